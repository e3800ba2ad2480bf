// Package config loads warden.yml plus the environment overrides used for
// secrets and container-style deployment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Console backends.
const (
	ConsoleScreen = "screen"
	ConsoleDocker = "docker"
)

// Config is the top-level warden.yml configuration.
type Config struct {
	Version string `yaml:"version"`

	// Channel is the broadcaster's login name.
	Channel string `yaml:"channel"`

	// RewardID is the channel-points reward that triggers registration.
	RewardID string `yaml:"reward_id"`

	Storage StorageConfig `yaml:"storage"`
	Console ConsoleConfig `yaml:"console"`
	Health  HealthConfig  `yaml:"health,omitempty"`

	// Credentials come from the environment only; never from the file.
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

// StorageConfig selects and parameterizes the registry backend.
type StorageConfig struct {
	Backend string `yaml:"backend,omitempty"` // "file" (default) or "redis"

	// Path is the JSON snapshot location for the file backend.
	Path string `yaml:"path,omitempty"`

	// RedisURL and RedisKey configure the redis backend.
	RedisURL string `yaml:"redis_url,omitempty"`
	RedisKey string `yaml:"redis_key,omitempty"`
}

// ConsoleConfig selects and parameterizes the server console backend.
type ConsoleConfig struct {
	Backend string `yaml:"backend,omitempty"` // "screen" (default) or "docker"

	// ScreenSession is the screen(1) session name for the screen backend.
	ScreenSession string `yaml:"screen_session,omitempty"`

	// Container is the server container name for the docker backend.
	Container string `yaml:"container,omitempty"`
}

// HealthConfig configures the /healthz endpoint.
type HealthConfig struct {
	// Port for the health server; 0 disables it.
	Port int `yaml:"port,omitempty"`
}

// Load reads and validates warden.yml from the specified path, then applies
// environment overrides. TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET are
// always environment-sourced; TWITCH_CHANNEL_NAME, REWARD_ID and
// SCREEN_SESSION override the file when set, for compatibility with
// container deployments configured purely through the environment.
func Load(path string) (*Config, error) {
	config, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadFile reads warden.yml and applies env overrides and defaults without
// the full startup validation. Used by read-only tooling (warden list) that
// needs the storage settings but not the Twitch credentials.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyEnv() {
	c.ClientID = os.Getenv("TWITCH_CLIENT_ID")
	c.ClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")

	if v := os.Getenv("TWITCH_CHANNEL_NAME"); v != "" {
		c.Channel = v
	}
	if v := os.Getenv("REWARD_ID"); v != "" {
		c.RewardID = v
	}
	if v := os.Getenv("SCREEN_SESSION"); v != "" {
		c.Console.ScreenSession = v
	}
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageFile
	}
	if c.Storage.Backend == StorageRedis && c.Storage.RedisKey == "" {
		c.Storage.RedisKey = "warden:registry"
	}
	if c.Console.Backend == "" {
		c.Console.Backend = ConsoleScreen
	}
	if c.Console.Backend == ConsoleScreen && c.Console.ScreenSession == "" {
		c.Console.ScreenSession = "mcserver"
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Channel == "" {
		return fmt.Errorf("channel is required (warden.yml or TWITCH_CHANNEL_NAME)")
	}

	if c.RewardID == "" {
		return fmt.Errorf("reward_id is required (warden.yml or REWARD_ID)")
	}

	if c.ClientID == "" {
		return fmt.Errorf("TWITCH_CLIENT_ID environment variable is required")
	}

	if c.ClientSecret == "" {
		return fmt.Errorf("TWITCH_CLIENT_SECRET environment variable is required")
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file backend")
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'file' or 'redis')", c.Storage.Backend)
	}

	switch c.Console.Backend {
	case ConsoleScreen:
		if c.Console.ScreenSession == "" {
			return fmt.Errorf("console.screen_session is required for the screen backend")
		}
	case ConsoleDocker:
		if c.Console.Container == "" {
			return fmt.Errorf("console.container is required for the docker backend")
		}
	default:
		return fmt.Errorf("invalid console backend: %s (must be 'screen' or 'docker')", c.Console.Backend)
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 0 and 65535, got %d", c.Health.Port)
	}

	return nil
}
