package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the key is absent or its retention has passed.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a stored value that does not decode.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager stores page responses in Redis.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a Manager. It panics on a nil client.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get returns the entry for key or ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.Inc()
	return &entry, nil
}

// Set stores entry until its Expires time. Expired entries are dropped silently.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	cacheStoredBytes.Observe(float64(len(data)))
	return nil
}

// Delete removes the entry for key.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Extend moves the retention deadline of an existing entry, used after a
// 304 response that carried a fresh Expires header.
func (m *Manager) Extend(ctx context.Context, key Key, expires time.Time) error {
	entry, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	entry.Expires = expires
	return m.Set(ctx, key, entry)
}
