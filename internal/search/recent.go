package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/symposium-labs/engage/internal/cache"
	"github.com/symposium-labs/engage/pkg/logger"
)

// RecentStore persists a user's recent query list.
type RecentStore interface {
	Load(ctx context.Context, userID string) ([]string, error)
	Store(ctx context.Context, userID string, queries []string) error
	Clear(ctx context.Context, userID string) error
}

// RecentSearches maintains a capped, de-duplicated, most-recent-first list of
// queries per user. Store failures are logged and never surface to callers.
type RecentSearches struct {
	store RecentStore
	limit int
	log   *logger.Logger
}

// NewRecentSearches creates a recent-search list manager.
func NewRecentSearches(store RecentStore, limit int, log *logger.Logger) *RecentSearches {
	if limit < 1 {
		limit = 10
	}
	return &RecentSearches{store: store, limit: limit, log: log}
}

// Get returns the user's recent queries, most recent first.
func (r *RecentSearches) Get(ctx context.Context, userID string) []string {
	queries, err := r.store.Load(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load recent searches")
		return []string{}
	}
	if queries == nil {
		return []string{}
	}
	return queries
}

// Save moves query to the front of the list, dropping any earlier copy and
// anything past the cap. Blank queries are ignored.
func (r *RecentSearches) Save(ctx context.Context, userID, query string) []string {
	current := r.Get(ctx, userID)

	query = strings.TrimSpace(query)
	if query == "" {
		return current
	}

	updated := make([]string, 0, r.limit)
	updated = append(updated, query)
	for _, q := range current {
		if len(updated) >= r.limit {
			break
		}
		if q != query {
			updated = append(updated, q)
		}
	}

	if err := r.store.Store(ctx, userID, updated); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to save recent search")
	}
	return updated
}

// Clear removes the user's list.
func (r *RecentSearches) Clear(ctx context.Context, userID string) {
	if err := r.store.Clear(ctx, userID); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to clear recent searches")
	}
}

// CacheRecentStore keeps recent lists as JSON arrays in the cache.
type CacheRecentStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheRecentStore creates a cache-backed store. A zero ttl keeps lists forever.
func NewCacheRecentStore(c cache.Cache, ttl time.Duration) *CacheRecentStore {
	return &CacheRecentStore{cache: c, ttl: ttl}
}

func recentKey(userID string) string {
	return "search:recent:" + userID
}

// Load implements RecentStore.
func (s *CacheRecentStore) Load(ctx context.Context, userID string) ([]string, error) {
	raw, err := s.cache.Get(ctx, recentKey(userID))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []string{}, nil
	}

	var queries []string
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		return nil, fmt.Errorf("failed to decode recent searches: %w", err)
	}
	return queries, nil
}

// Store implements RecentStore.
func (s *CacheRecentStore) Store(ctx context.Context, userID string, queries []string) error {
	data, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("failed to encode recent searches: %w", err)
	}
	return s.cache.Set(ctx, recentKey(userID), string(data), s.ttl)
}

// Clear implements RecentStore.
func (s *CacheRecentStore) Clear(ctx context.Context, userID string) error {
	return s.cache.Del(ctx, recentKey(userID))
}
