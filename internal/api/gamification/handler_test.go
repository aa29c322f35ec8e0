//nolint:noctx // Test file uses http.NewRequest for simplicity
package gamification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-labs/engage/internal/leveling"
	"github.com/symposium-labs/engage/internal/notify"
	gamesvc "github.com/symposium-labs/engage/internal/service/gamification"
	"github.com/symposium-labs/engage/internal/service/leaderboard"
	"github.com/symposium-labs/engage/pkg/logger"
	"github.com/symposium-labs/engage/test/mocks"
)

// Mock Leaderboard Service
type mockLeaderboardService struct {
	entries map[string][]leaderboard.Entry
	ranks   map[string]int
	err     error
}

func newMockLeaderboardService() *mockLeaderboardService {
	return &mockLeaderboardService{
		entries: make(map[string][]leaderboard.Entry),
		ranks:   make(map[string]int),
	}
}

func (m *mockLeaderboardService) GetGlobalLeaderboard(_ context.Context, period string, limit int) ([]leaderboard.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	entries, exists := m.entries[period]
	if !exists {
		return []leaderboard.Entry{}, nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockLeaderboardService) GetUserRank(_ context.Context, userID, period string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	pos, ok := m.ranks[period+":"+userID]
	if !ok {
		return 0, leaderboard.ErrUserNotRanked
	}
	return pos, nil
}

// Test Setup
type testEnv struct {
	router      *gin.Engine
	store       *mocks.MockStatsStore
	leaderboard *mockLeaderboardService
}

func setupTestHandler(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := mocks.NewMockStatsStore()
	svc := gamesvc.NewService(
		leveling.NewEngine(),
		store,
		&mocks.MockUserRepository{},
		logger.NewNop(),
		gamesvc.WithFeed(notify.NewFeed(time.Minute)),
		gamesvc.WithUnlockHistory(store),
		gamesvc.WithLedger(store),
	)
	lb := newMockLeaderboardService()

	handler := NewHandler(svc, lb, 20, logger.NewNop())
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))

	return &testEnv{router: router, store: store, leaderboard: lb}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

// Tests

func TestGetUserStats_Success(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "GET", "/api/v1/users/u1/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	stats := response["stats"].(map[string]any)
	assert.Equal(t, "u1", stats["user_id"])
	assert.Equal(t, float64(1), stats["level"])

	rank := response["rank"].(map[string]any)
	assert.Equal(t, "Novice", rank["name"])
}

func TestAwardXP_Success(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "POST", "/api/v1/users/u1/xp", map[string]any{"action": "UPLOAD_PAPER"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), response["xp_awarded"])

	row, ok := env.store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 50, row.XP)

	// The award shows up as a notification.
	w, response = env.do(t, "GET", "/api/v1/users/u1/notifications", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	notes := response["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "UPLOAD_PAPER", notes[0].(map[string]any)["action"])
}

func TestAwardXP_CustomAmount(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "POST", "/api/v1/users/u1/xp", map[string]any{"action": "CUSTOM", "amount": 120})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["leveled_up"])
	assert.Equal(t, float64(2), response["new_level"])
}

func TestAwardXP_BadRequests(t *testing.T) {
	env := setupTestHandler(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"unknown action", map[string]any{"action": "LEVITATE"}, "unknown action"},
		{"missing action", map[string]any{"amount": 5}, "invalid request body"},
		{"amount too large", map[string]any{"action": "CUSTOM", "amount": int64(math.MaxInt64)}, "amount cannot exceed"},
		{"amount over cap", map[string]any{"action": "CUSTOM", "amount": leveling.MaxAwardAmount + 1}, "amount cannot exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, "POST", "/api/v1/users/u1/xp", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, response["error"], tt.want)
			assert.NotEmpty(t, response["timestamp"])
		})
	}

	_, ok := env.store.Get("u1")
	assert.False(t, ok, "rejected awards must not touch the store")
}

func TestAwardXP_StoreFailure(t *testing.T) {
	env := setupTestHandler(t)
	env.store.UpdateErr = errors.New("db down")

	w, response := env.do(t, "POST", "/api/v1/users/u1/xp", map[string]any{"action": "COMMENT"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to award XP", response["error"])
}

func TestIncrementStat(t *testing.T) {
	env := setupTestHandler(t)

	// Empty body increments by one.
	w, response := env.do(t, "POST", "/api/v1/users/u1/stats/posts_created/increment", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	unlocked := response["unlocked"].([]any)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first_post", unlocked[0].(map[string]any)["id"])

	w, _ = env.do(t, "POST", "/api/v1/users/u1/stats/posts_created/increment", map[string]any{"delta": 4})
	assert.Equal(t, http.StatusOK, w.Code)

	row, _ := env.store.Get("u1")
	assert.Equal(t, 5, row.Counters["posts_created"])
}

func TestIncrementStat_NonPositiveDelta(t *testing.T) {
	env := setupTestHandler(t)

	for _, delta := range []int{0, -3} {
		w, response := env.do(t, "POST", "/api/v1/users/u1/stats/posts_created/increment", map[string]any{"delta": delta})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, response["error"], "delta must be greater than 0")
	}

	_, ok := env.store.Get("u1")
	assert.False(t, ok)
}

func TestIncrementStat_UnknownKind(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "POST", "/api/v1/users/u1/stats/naps_taken/increment", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["error"], "unknown stat")
}

func TestRecordLogin(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "POST", "/api/v1/users/u1/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["streak"])
	assert.Equal(t, true, response["first_today"])
}

func TestGrantAchievement(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "POST", "/api/v1/users/u1/achievements/early_adopter", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, response["granted"])

	w, response = env.do(t, "POST", "/api/v1/users/u1/achievements/early_adopter", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, response["granted"])

	w, _ = env.do(t, "POST", "/api/v1/users/u1/achievements/moon_walker", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAchievementCatalogAndRanks(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "GET", "/api/v1/achievements", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(11), response["total"])

	w, response = env.do(t, "GET", "/api/v1/ranks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["ranks"], 10)
	assert.Len(t, response["thresholds"], 50)

	w, response = env.do(t, "GET", "/api/v1/actions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, response["actions"])
}

func TestGetLeaderboard(t *testing.T) {
	env := setupTestHandler(t)
	env.leaderboard.entries["month"] = []leaderboard.Entry{
		{Position: 1, UserID: "alice", Username: "alice", XP: 300},
		{Position: 2, UserID: "bob", Username: "bob", XP: 120},
	}

	w, response := env.do(t, "GET", "/api/v1/leaderboard?period=month&limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "month", response["period"])
	assert.Equal(t, float64(2), response["total_entries"])
	assert.NotEmpty(t, response["generated_at"])

	w, response = env.do(t, "GET", "/api/v1/leaderboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all_time", response["period"])
}

func TestGetLeaderboard_BadRequests(t *testing.T) {
	env := setupTestHandler(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"invalid period", "?period=decade", "invalid period"},
		{"invalid limit", "?limit=abc", "invalid limit"},
		{"zero limit", "?limit=0", "greater than 0"},
		{"limit too large", "?limit=5000", "cannot exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, "GET", "/api/v1/leaderboard"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, response["error"], tt.want)
		})
	}
}

func TestGetLeaderboard_ServiceError(t *testing.T) {
	env := setupTestHandler(t)
	env.leaderboard.err = errors.New("db down")

	w, _ := env.do(t, "GET", "/api/v1/leaderboard", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetUserRank(t *testing.T) {
	env := setupTestHandler(t)
	env.leaderboard.ranks["week:alice"] = 3

	w, response := env.do(t, "GET", "/api/v1/users/alice/rank?period=week", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), response["position"])

	w, _ = env.do(t, "GET", "/api/v1/users/bob/rank?period=week", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, "GET", "/api/v1/users/alice/rank?period=forever", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterUser(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "PUT", "/api/v1/users/u1", map[string]any{"username": "alice", "display_name": "Alice"})
	assert.Equal(t, http.StatusOK, w.Code)

	user := response["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, float64(1), user["member_number"])

	unlocked := response["unlocked"].([]any)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "early_adopter", unlocked[0].(map[string]any)["id"])

	row, ok := env.store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 1, row.MemberNumber)

	// The unlock is listed in the user's achievement history.
	w, response = env.do(t, "GET", "/api/v1/users/u1/achievements", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["total"])
	first := response["achievements"].([]any)[0].(map[string]any)
	assert.Equal(t, "early_adopter", first["achievement"].(map[string]any)["id"])
}

func TestRegisterUser_MissingUsername(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "PUT", "/api/v1/users/u1", map[string]any{"display_name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["error"], "invalid request body")
}

func TestGetUserAchievements_Empty(t *testing.T) {
	env := setupTestHandler(t)

	w, response := env.do(t, "GET", "/api/v1/users/nobody/achievements", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, response["achievements"])
	assert.Equal(t, float64(0), response["total"])
}

func TestGetXPHistory(t *testing.T) {
	env := setupTestHandler(t)

	for _, action := range []string{"COMMENT", "CREATE_POST", "UPLOAD_PAPER"} {
		w, _ := env.do(t, "POST", "/api/v1/users/u1/xp", map[string]any{"action": action})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, response := env.do(t, "GET", "/api/v1/users/u1/xp?limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(30), response["days"])

	events := response["events"].([]any)
	require.Len(t, events, 2)
	assert.Equal(t, "UPLOAD_PAPER", events[0].(map[string]any)["action"])
	assert.Equal(t, []any{}, response["daily"])
}

func TestGetXPHistory_BadRequests(t *testing.T) {
	env := setupTestHandler(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"bad limit", "?limit=abc", "invalid limit"},
		{"zero days", "?days=0", "days must be between"},
		{"too many days", "?days=400", "days must be between"},
		{"non-numeric days", "?days=week", "days must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, "GET", "/api/v1/users/u1/xp"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, response["error"], tt.want)
		})
	}
}
