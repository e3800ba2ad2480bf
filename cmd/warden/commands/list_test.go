package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, registryPath string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "warden.yml")
	content := `version: "1.0"
channel: "testchannel"
reward_id: "reward-1"
storage:
  path: "` + registryPath + `"
console:
  screen_session: "mcserver"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListCommand_EmptyRegistry(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "users.json")
	configPath = writeTestConfig(t, registryPath)

	err := listCmd.RunE(listCmd, nil)
	assert.NoError(t, err)
}

func TestListCommand_WithEntries(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(registryPath,
		[]byte(`{"viewer1": "Steve", "viewer2": "Alex"}`), 0644))
	configPath = writeTestConfig(t, registryPath)

	err := listCmd.RunE(listCmd, nil)
	assert.NoError(t, err)
}

func TestListCommand_MissingConfig(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.yml")

	err := listCmd.RunE(listCmd, nil)
	assert.Error(t, err)
}

func TestListCommand_CorruptRegistry(t *testing.T) {
	registryPath := filepath.Join(t.TempDir(), "users.json")
	configPath = writeTestConfig(t, registryPath)

	// Corrupt registry file surfaces as a load error, not a panic.
	require.NoError(t, os.WriteFile(registryPath, []byte("{broken"), 0644))
	err := listCmd.RunE(listCmd, nil)
	assert.Error(t, err)
}
