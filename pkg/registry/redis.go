package registry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the mapping as a Redis hash. Useful when the game
// server deployment already ships a Redis instance and operators prefer it
// over a bind-mounted data file.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a RedisStore from connection options and the hash
// key under which the mapping is stored.
func NewRedisStore(opts *redis.Options, key string) (*RedisStore, error) {
	if key == "" {
		return nil, fmt.Errorf("registry key cannot be empty")
	}
	return &RedisStore{
		rdb: redis.NewClient(opts),
		key: key,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Load reads the full hash. A missing key yields an empty map.
func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	entries, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry hash: %w", err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return entries, nil
}

// Save replaces the hash wholesale. DEL and HSET run in one MULTI/EXEC
// block so a concurrent reader never observes a half-written snapshot.
func (s *RedisStore) Save(ctx context.Context, entries map[string]string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(entries) > 0 {
		flat := make(map[string]interface{}, len(entries))
		for k, v := range entries {
			flat[k] = v
		}
		pipe.HSet(ctx, s.key, flat)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write registry hash: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
