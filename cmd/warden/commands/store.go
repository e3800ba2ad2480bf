package commands

import (
	"fmt"

	"github.com/dyluth/warden/internal/config"
	"github.com/dyluth/warden/pkg/registry"
	"github.com/redis/go-redis/v9"
)

// newStore builds the registry store selected by the configuration.
func newStore(cfg *config.Config) (registry.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile:
		return registry.NewFileStore(cfg.Storage.Path)

	case config.StorageRedis:
		opts, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid storage.redis_url: %w", err)
		}
		return registry.NewRedisStore(opts, cfg.Storage.RedisKey)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
