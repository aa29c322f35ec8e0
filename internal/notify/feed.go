// Package notify keeps short-lived per-user XP notifications for the client to poll.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/symposium-labs/engage/internal/leveling"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// maxPerUser bounds the backlog kept for a user who never polls.
const maxPerUser = 50

// Notification is a single "+N XP" event.
type Notification struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed is an in-memory, expiring notification list per user. It is safe for
// concurrent use.
type Feed struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string][]Notification
}

// NewFeed creates a feed. A non-positive ttl uses DefaultTTL.
func NewFeed(ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string][]Notification),
	}
}

// XPAwarded records a notification for the user.
func (f *Feed) XPAwarded(userID string, action leveling.Action, amount int) {
	f.Push(userID, action.String(), amount)
}

// Push appends a notification and returns it.
func (f *Feed) Push(userID, action string, amount int) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Action:    action,
		Amount:    amount,
		CreatedAt: f.now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	list := append(f.prune(userID), n)
	if len(list) > maxPerUser {
		list = list[len(list)-maxPerUser:]
	}
	f.items[userID] = list
	return n
}

// Recent returns the user's unexpired notifications, oldest first.
func (f *Feed) Recent(userID string) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.prune(userID)
	out := make([]Notification, len(list))
	copy(out, list)
	return out
}

// Sweep drops expired notifications for every user.
func (f *Feed) Sweep() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for userID := range f.items {
		f.prune(userID)
	}
}

// prune must be called with mu held.
func (f *Feed) prune(userID string) []Notification {
	list := f.items[userID]
	cutoff := f.now().Add(-f.ttl)

	i := 0
	for i < len(list) && !list[i].CreatedAt.After(cutoff) {
		i++
	}
	list = list[i:]

	if len(list) == 0 {
		delete(f.items, userID)
		return nil
	}
	f.items[userID] = list
	return list
}
