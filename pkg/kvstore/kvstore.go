// Package kvstore provides the small keyed store backing per-user view state
// (selected week, active tab). Keys are opaque strings; the reserved sentinel
// key disables persistence entirely so anonymous sessions read and write
// into the void.
package kvstore

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Sentinel is the reserved key that turns every operation into a no-op.
const Sentinel = "anonymous"

// Store is a minimal get/set/remove key-value abstraction.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RedisStore persists values in Redis under a shared namespace.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a redis-backed Store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "uistate"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == Sentinel {
		return "", false, nil
	}
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if key == Sentinel {
		return nil
	}
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if key == Sentinel {
		return nil
	}
	return s.client.Del(ctx, s.key(key)).Err()
}

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore builds an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == Sentinel {
		return "", false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == Sentinel {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	if key == Sentinel {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
