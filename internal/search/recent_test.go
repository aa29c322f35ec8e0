package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-labs/engage/internal/cache"
	"github.com/symposium-labs/engage/pkg/logger"
)

func setupRecent(t *testing.T, ttl time.Duration) (*RecentSearches, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = c.Close() })

	store := NewCacheRecentStore(c, ttl)
	return NewRecentSearches(store, 10, logger.New("debug", "text", "stdout")), mr
}

func TestRecentSearches_CapAndOrder(t *testing.T) {
	recent, _ := setupRecent(t, 0)
	ctx := context.Background()

	assert.Equal(t, []string{}, recent.Get(ctx, "u1"))

	for i := 1; i <= 15; i++ {
		recent.Save(ctx, "u1", fmt.Sprintf("query %d", i))
	}

	got := recent.Get(ctx, "u1")
	require.Len(t, got, 10)
	assert.Equal(t, "query 15", got[0])
	assert.Equal(t, "query 6", got[9])
}

func TestRecentSearches_DedupeMovesToFront(t *testing.T) {
	recent, _ := setupRecent(t, 0)
	ctx := context.Background()

	recent.Save(ctx, "u1", "ketamine")
	recent.Save(ctx, "u1", "mdma")
	recent.Save(ctx, "u1", "psilocybin")

	got := recent.Save(ctx, "u1", "ketamine")
	assert.Equal(t, []string{"ketamine", "psilocybin", "mdma"}, got)
	assert.Equal(t, got, recent.Get(ctx, "u1"))

	// A full list stays full when an existing entry is re-saved.
	for i := 0; i < 10; i++ {
		recent.Save(ctx, "u2", fmt.Sprintf("q%d", i))
	}
	got = recent.Save(ctx, "u2", "q3")
	assert.Len(t, got, 10)
	assert.Equal(t, "q3", got[0])
	assert.Equal(t, "q0", got[9])
}

func TestRecentSearches_IgnoresBlankQueries(t *testing.T) {
	recent, _ := setupRecent(t, 0)
	ctx := context.Background()

	recent.Save(ctx, "u1", "neuroplasticity")
	got := recent.Save(ctx, "u1", "   ")
	assert.Equal(t, []string{"neuroplasticity"}, got)
}

func TestRecentSearches_PerUserIsolation(t *testing.T) {
	recent, mr := setupRecent(t, 0)
	ctx := context.Background()

	recent.Save(ctx, "alice", "set and setting")
	recent.Save(ctx, "bob", "microdosing")

	assert.Equal(t, []string{"set and setting"}, recent.Get(ctx, "alice"))
	assert.Equal(t, []string{"microdosing"}, recent.Get(ctx, "bob"))
	assert.True(t, mr.Exists("search:recent:alice"))

	recent.Clear(ctx, "alice")
	assert.Equal(t, []string{}, recent.Get(ctx, "alice"))
	assert.Equal(t, []string{"microdosing"}, recent.Get(ctx, "bob"))
}

func TestRecentSearches_TTL(t *testing.T) {
	recent, mr := setupRecent(t, time.Hour)
	ctx := context.Background()

	recent.Save(ctx, "u1", "breathwork")
	assert.Equal(t, time.Hour, mr.TTL("search:recent:u1"))

	mr.FastForward(2 * time.Hour)
	assert.Equal(t, []string{}, recent.Get(ctx, "u1"))
}

func TestRecentSearches_DegradesWhenRedisDown(t *testing.T) {
	recent, mr := setupRecent(t, 0)
	ctx := context.Background()

	recent.Save(ctx, "u1", "ketamine")
	mr.Close()

	assert.Equal(t, []string{}, recent.Get(ctx, "u1"))
	assert.Equal(t, []string{"mdma"}, recent.Save(ctx, "u1", "mdma"))
	assert.NotPanics(t, func() { recent.Clear(ctx, "u1") })
}

func TestRecentSearches_CorruptPayload(t *testing.T) {
	recent, mr := setupRecent(t, 0)
	ctx := context.Background()

	require.NoError(t, mr.Set("search:recent:u1", "{not json"))
	assert.Equal(t, []string{}, recent.Get(ctx, "u1"))

	// Saving overwrites the corrupt value.
	recent.Save(ctx, "u1", "integration")
	assert.Equal(t, []string{"integration"}, recent.Get(ctx, "u1"))
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]string, error) {
	return nil, errors.New("load failed")
}

func (failingStore) Store(context.Context, string, []string) error {
	return errors.New("store failed")
}

func (failingStore) Clear(context.Context, string) error {
	return errors.New("clear failed")
}

func TestRecentSearches_FailingStore(t *testing.T) {
	recent := NewRecentSearches(failingStore{}, 0, logger.New("debug", "text", "stdout"))
	ctx := context.Background()

	assert.Equal(t, []string{}, recent.Get(ctx, "u1"))
	assert.Equal(t, []string{"therapy"}, recent.Save(ctx, "u1", "therapy"))
	recent.Clear(ctx, "u1")
}
