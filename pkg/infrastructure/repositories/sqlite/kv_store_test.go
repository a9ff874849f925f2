package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "fleetdash_state_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "fleetdash_state_v1", `{"r":[]}`))
	require.NoError(t, store.Set(ctx, "fleetdash_state_v1", `{"r":[],"a":[]}`))

	v, ok, err := store.Get(ctx, "fleetdash_state_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"r":[],"a":[]}`, v)

	require.NoError(t, store.Remove(ctx, "fleetdash_state_v1"))
	require.NoError(t, store.Remove(ctx, "fleetdash_state_v1"))
	_, ok, err = store.Get(ctx, "fleetdash_state_v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyValueStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v"))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, path, second.Path())
}
