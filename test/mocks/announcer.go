package mocks

import (
	"context"
	"sync"

	"github.com/symposium-labs/engage/internal/leveling"
)

// Announcement is one call recorded by MockAnnouncer.
type Announcement struct {
	Kind     string // "level_up" or "achievement"
	Username string
	Level    int
	Detail   string // rank name or achievement id
}

// MockAnnouncer records chat announcements.
type MockAnnouncer struct {
	mu    sync.Mutex
	calls []Announcement
	Err   error
}

// AnnounceLevelUp records a level-up.
func (m *MockAnnouncer) AnnounceLevelUp(_ context.Context, username string, level int, rank leveling.Rank) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Announcement{Kind: "level_up", Username: username, Level: level, Detail: rank.Name})
	return m.Err
}

// AnnounceAchievement records an unlock.
func (m *MockAnnouncer) AnnounceAchievement(_ context.Context, username string, a leveling.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Announcement{Kind: "achievement", Username: username, Detail: a.ID})
	return m.Err
}

// Calls returns the recorded announcements in order.
func (m *MockAnnouncer) Calls() []Announcement {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Announcement, len(m.calls))
	copy(out, m.calls)
	return out
}
