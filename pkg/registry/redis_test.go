package registry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(&redis.Options{Addr: mr.Addr()}, "warden:test:registry")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStore_LoadMissingKey(t *testing.T) {
	store := newTestRedisStore(t)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRedisStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	want := map[string]string{
		"viewer1": "Steve",
		"viewer2": "Alex",
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_SaveReplacesStaleFields(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]string{"viewer1": "Steve", "viewer2": "Alex"}))
	require.NoError(t, store.Save(ctx, map[string]string{"viewer2": "Alex"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"viewer2": "Alex"}, got)
}

func TestRedisStore_SaveEmptyClearsKey(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]string{"viewer1": "Steve"}))
	require.NoError(t, store.Save(ctx, map[string]string{}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStore_EmptyKeyRejected(t *testing.T) {
	store, err := NewRedisStore(&redis.Options{Addr: "localhost:6379"}, "")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestRedisStore_Ping(t *testing.T) {
	store := newTestRedisStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
