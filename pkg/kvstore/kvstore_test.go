package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "user@example.edu")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "user@example.edu", `{"selectedWeek":3}`))
	val, ok, err := store.Get(ctx, "user@example.edu")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"selectedWeek":3}`, val)

	require.NoError(t, store.Remove(ctx, "user@example.edu"))
	_, ok, err = store.Get(ctx, "user@example.edu")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreSentinelIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Sentinel, "ignored"))
	_, ok, err := store.Get(ctx, Sentinel)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.Remove(ctx, Sentinel))
	assert.Empty(t, store.values)
}
