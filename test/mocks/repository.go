package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/symposium-labs/engage/internal/models"
	"github.com/symposium-labs/engage/internal/repository"
)

// MockStatsStore is an in-memory statistics store. Updates are serialised
// by a single mutex and rolled back when the update function fails.
type MockStatsStore struct {
	mu      sync.Mutex
	rows    map[string]models.UserStatistics
	Events  []models.XPEvent
	Unlocks []models.UserAchievement

	// MemberNumbers seeds the signup ordinal of lazily created records.
	MemberNumbers map[string]int

	// UpdateErr, when set, fails every Update before fn runs.
	UpdateErr error

	// Saves counts updates that wrote the record.
	Saves int
}

// NewMockStatsStore creates an empty store.
func NewMockStatsStore() *MockStatsStore {
	return &MockStatsStore{
		rows:          make(map[string]models.UserStatistics),
		MemberNumbers: make(map[string]int),
	}
}

// Load returns the user's record, creating it on first access.
func (m *MockStatsStore) Load(_ context.Context, userID string) (*models.UserStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := cloneRow(m.getOrCreate(userID))
	return &row, nil
}

// Update applies fn to a copy of the record and keeps it only when fn succeeds.
func (m *MockStatsStore) Update(_ context.Context, userID string, fn repository.UpdateFunc) (*models.UserStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}

	row := cloneRow(m.getOrCreate(userID))
	changes, err := fn(&row)
	if errors.Is(err, repository.ErrUnchanged) {
		stored := cloneRow(m.rows[userID])
		return &stored, nil
	}
	if err != nil {
		return nil, err
	}

	m.Saves++
	m.rows[userID] = cloneRow(row)
	if changes != nil {
		m.Events = append(m.Events, changes.Events...)
		for _, u := range changes.Unlocks {
			if !m.hasUnlock(u.UserID, u.AchievementID) {
				m.Unlocks = append(m.Unlocks, u)
			}
		}
	}
	return &row, nil
}

// ListUserIDs returns every user id in sorted order.
func (m *MockStatsStore) ListUserIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Put stores a record directly.
func (m *MockStatsStore) Put(row models.UserStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[row.UserID] = cloneRow(row)
}

// Get returns a copy of a record and whether it exists.
func (m *MockStatsStore) Get(userID string) (models.UserStatistics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[userID]
	return cloneRow(row), ok
}

// HoldersCounts counts recorded unlocks per achievement.
func (m *MockStatsStore) HoldersCounts(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int64)
	for _, u := range m.Unlocks {
		counts[u.AchievementID]++
	}
	return counts, nil
}

// GetUserAchievements returns the user's recorded unlocks, most recent first.
func (m *MockStatsStore) GetUserAchievements(_ context.Context, userID string) ([]models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.UserAchievement
	for i := len(m.Unlocks) - 1; i >= 0; i-- {
		if m.Unlocks[i].UserID == userID {
			out = append(out, m.Unlocks[i])
		}
	}
	return out, nil
}

// ListByUser returns the user's recorded XP events, newest first.
func (m *MockStatsStore) ListByUser(_ context.Context, userID string, limit int) ([]models.XPEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.XPEvent
	for i := len(m.Events) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if m.Events[i].UserID == userID {
			out = append(out, m.Events[i])
		}
	}
	return out, nil
}

// GetDailyByRange returns no rows; the mock keeps no rollups.
func (m *MockStatsStore) GetDailyByRange(context.Context, time.Time, time.Time, string) ([]models.DailyXP, error) {
	return []models.DailyXP{}, nil
}

func (m *MockStatsStore) getOrCreate(userID string) models.UserStatistics {
	if row, ok := m.rows[userID]; ok {
		return row
	}
	row := models.UserStatistics{
		UserID:       userID,
		Level:        1,
		Achievements: []string{},
		Counters:     map[string]int{},
		MemberNumber: m.MemberNumbers[userID],
		JoinDate:     time.Now().UTC(),
	}
	m.rows[userID] = row
	return row
}

func (m *MockStatsStore) hasUnlock(userID, achievementID string) bool {
	for _, u := range m.Unlocks {
		if u.UserID == userID && u.AchievementID == achievementID {
			return true
		}
	}
	return false
}

func cloneRow(row models.UserStatistics) models.UserStatistics {
	out := row
	out.Achievements = append([]string{}, row.Achievements...)
	out.Counters = make(map[string]int, len(row.Counters))
	for k, v := range row.Counters {
		out.Counters[k] = v
	}
	if row.LastLogin != nil {
		t := *row.LastLogin
		out.LastLogin = &t
	}
	return out
}

// MockUserRepository is a simple mock for user repository
type MockUserRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)

	// SaveErr, when set, fails every CreateOrUpdate.
	SaveErr error

	mu    sync.Mutex
	users map[string]models.User
}

// GetByID returns GetByIDFunc's result, a saved user, or a user named after the id.
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return &models.User{ID: id, Username: id}, nil
}

// CreateOrUpdate saves a user, assigning member numbers in signup order.
// Existing users keep their member number.
func (m *MockUserRepository) CreateOrUpdate(_ context.Context, user *models.User) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if existing, ok := m.users[user.ID]; ok {
		user.MemberNumber = existing.MemberNumber
		user.CreatedAt = existing.CreatedAt
	} else {
		user.MemberNumber = len(m.users) + 1
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}
