package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("TWITCH_CLIENT_ID", "test-client")
	t.Setenv("TWITCH_CLIENT_SECRET", "test-secret")
	// Keep overrides from the ambient environment out of the tests.
	t.Setenv("TWITCH_CHANNEL_NAME", "")
	t.Setenv("REWARD_ID", "")
	t.Setenv("SCREEN_SESSION", "")
}

const validYAML = `version: "1.0"
channel: "testchannel"
reward_id: "reward-1"
storage:
  path: "/app/data/users.json"
console:
  screen_session: "mcserver"
`

func TestLoad_ValidConfig(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testchannel", cfg.Channel)
	assert.Equal(t, "reward-1", cfg.RewardID)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, "/app/data/users.json", cfg.Storage.Path)
	assert.Equal(t, ConsoleScreen, cfg.Console.Backend)
	assert.Equal(t, "mcserver", cfg.Console.ScreenSession)
	assert.Equal(t, "test-client", cfg.ClientID)
	assert.Equal(t, "test-secret", cfg.ClientSecret)
}

func TestLoad_FileNotFound(t *testing.T) {
	setCredentials(t)
	cfg, err := Load("/nonexistent/warden.yml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, "version: \"1.0\"\nchannel: [broken\n")

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_MissingCredentials(t *testing.T) {
	setCredentials(t)
	t.Setenv("TWITCH_CLIENT_ID", "")
	path := writeConfig(t, validYAML)

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "TWITCH_CLIENT_ID")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("TWITCH_CHANNEL_NAME", "overridden")
	t.Setenv("REWARD_ID", "reward-env")
	t.Setenv("SCREEN_SESSION", "mc-env")
	path := writeConfig(t, validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "overridden", cfg.Channel)
	assert.Equal(t, "reward-env", cfg.RewardID)
	assert.Equal(t, "mc-env", cfg.Console.ScreenSession)
}

func TestLoad_RedisBackend(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `version: "1.0"
channel: "testchannel"
reward_id: "reward-1"
storage:
  backend: "redis"
  redis_url: "redis://localhost:6379"
console:
  screen_session: "mcserver"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "warden:registry", cfg.Storage.RedisKey)
}

func TestLoad_DockerConsole(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `version: "1.0"
channel: "testchannel"
reward_id: "reward-1"
storage:
  path: "/app/data/users.json"
console:
  backend: "docker"
  container: "mc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ConsoleDocker, cfg.Console.Backend)
	assert.Equal(t, "mc", cfg.Console.Container)
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `version: "2.0"
channel: "testchannel"
reward_id: "reward-1"
storage:
  path: "/app/data/users.json"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestValidate_BadBackends(t *testing.T) {
	setCredentials(t)

	_, err := Load(writeConfig(t, `version: "1.0"
channel: "c"
reward_id: "r"
storage:
  backend: "etcd"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")

	_, err = Load(writeConfig(t, `version: "1.0"
channel: "c"
reward_id: "r"
storage:
  path: "/data/users.json"
console:
  backend: "telnet"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid console backend")
}

func TestValidate_DockerConsoleRequiresContainer(t *testing.T) {
	setCredentials(t)
	_, err := Load(writeConfig(t, `version: "1.0"
channel: "c"
reward_id: "r"
storage:
  path: "/data/users.json"
console:
  backend: "docker"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "console.container is required")
}
