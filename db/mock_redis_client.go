package db

import (
	"context"
	"fmt"
	"log"
	"path"
	"sync"
	"time"
)

// MockRedisClient simulates a Redis client in memory. It backs tests and the dev environment.
type MockRedisClient struct {
	data    map[string]mockEntry
	mu      sync.RWMutex
	context context.Context
	now     func() time.Time
}

type mockEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMockRedisClient initializes a new MockRedisClient.
func NewMockRedisClient(ctx context.Context) *MockRedisClient {
	return &MockRedisClient{
		data:    make(map[string]mockEntry),
		context: ctx,
		now:     time.Now,
	}
}

// Set stores a key-value pair in the mock Redis.
func (m *MockRedisClient) Set(key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := mockEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

// Get retrieves a value for a given key from the mock Redis.
func (m *MockRedisClient) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, exists := m.data[key]
	if !exists || m.expired(e) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return e.value, nil
}

// Keys returns the live keys matching a glob pattern.
func (m *MockRedisClient) Keys(pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k, e := range m.data {
		if m.expired(e) {
			continue
		}
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MockRedisClient) Del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// GetContext returns the mock Redis client's context.
func (m *MockRedisClient) GetContext() context.Context {
	return m.context
}

// Ping simulates a Redis Ping operation.
func (m *MockRedisClient) Ping() error {
	log.Println("MockRedisClient: Ping successful")
	return nil
}

func (m *MockRedisClient) Close() error {
	return nil
}

func (m *MockRedisClient) expired(e mockEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}
