package mocks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ErrCacheDown is returned by every MockCache call while Down is set.
var ErrCacheDown = errors.New("mock cache unavailable")

// MockCache is an in-memory mock implementation of the Cache interface
// Used for testing without requiring a real Redis instance
type MockCache struct {
	data map[string]string
	mu   sync.RWMutex

	// Down makes every call fail, simulating a Redis outage.
	Down bool
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

// Get retrieves a value from the mock cache
func (m *MockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Down {
		return "", ErrCacheDown
	}
	return m.data[key], nil // empty string for non-existent keys, like Redis
}

// Set stores a value in the mock cache
func (m *MockCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Down {
		return ErrCacheDown
	}
	// Note: expiration is ignored in mock (no TTL implementation)
	m.data[key] = toString(value)
	return nil
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Down {
		return ErrCacheDown
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Exists counts how many of the keys exist
func (m *MockCache) Exists(_ context.Context, keys ...string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Down {
		return 0, ErrCacheDown
	}
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
	}
	return n, nil
}

// Incr increments an integer value
func (m *MockCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Down {
		return 0, ErrCacheDown
	}
	var cur int64
	if v, ok := m.data[key]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value is not an integer: %w", err)
		}
		cur = parsed
	}
	cur++
	m.data[key] = strconv.FormatInt(cur, 10)
	return cur, nil
}

// SetNX sets a value only if the key does not exist
func (m *MockCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Down {
		return false, ErrCacheDown
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = toString(value)
	return true, nil
}

// Expire is a no-op in the mock
func (m *MockCache) Expire(_ context.Context, _ string, _ time.Duration) error {
	if m.Down {
		return ErrCacheDown
	}
	return nil
}

// Health reports the simulated availability
func (m *MockCache) Health(_ context.Context) error {
	if m.Down {
		return ErrCacheDown
	}
	return nil
}

// Close is a no-op in the mock
func (m *MockCache) Close() error {
	return nil
}

// Clear removes all data from the mock cache (useful for test cleanup)
func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]string)
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
