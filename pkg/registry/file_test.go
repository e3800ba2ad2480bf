package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "users.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	want := map[string]string{
		"viewer1": "Steve",
		"viewer2": "Alex",
	}
	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// No temp files left behind.
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".registry-*.json"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	entries, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, entries)
	assert.Contains(t, err.Error(), "failed to parse registry file")
}

func TestFileStore_SaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, map[string]string{"viewer1": "Steve", "viewer2": "Alex"}))
	require.NoError(t, store.Save(ctx, map[string]string{"viewer1": "Steve"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"viewer1": "Steve"}, got)
}

func TestFileStore_EmptyPathRejected(t *testing.T) {
	store, err := NewFileStore("")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestFileStore_CorruptThenOpenStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("  "), 0644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	reg := Open(context.Background(), store)
	assert.Equal(t, 0, reg.Len())
}
