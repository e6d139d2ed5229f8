package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutGetRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "audit/2026-02-03.yaml", []byte("entries")))

	data, err := store.Get(ctx, "audit/2026-02-03.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("entries"), data)

	ok, err := store.Exists(ctx, "audit/2026-02-03.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalGetMissingKey(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalPutOverwrites(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "key", []byte("v1")))
	require.NoError(t, store.Put(ctx, "key", []byte("v2")))

	data, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestLocalListByPrefix(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "audit/2026-02-03.yaml", []byte("a")))
	require.NoError(t, store.Put(ctx, "audit/2026-02-04.yaml", []byte("b")))
	require.NoError(t, store.Put(ctx, "other/file", []byte("c")))

	keys, err := store.List(ctx, "audit")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"audit/2026-02-03.yaml", "audit/2026-02-04.yaml"}, keys)

	keys, err = store.List(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
