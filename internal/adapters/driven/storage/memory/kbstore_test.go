package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKnowledgeStore_RoundTrip tests basic add and get.
func TestKnowledgeStore_RoundTrip(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	require.NoError(t, store.AddMapping(ctx, "g", map[int]int{1: 2}))

	mapping, err := store.GetMapping(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2}, mapping)
}

// TestKnowledgeStore_CopyOnRead tests that mutating a returned mapping does
// not affect the store.
func TestKnowledgeStore_CopyOnRead(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	require.NoError(t, store.AddMapping(ctx, "g", map[int]int{1: 2}))

	first, err := store.GetMapping(ctx, "g")
	require.NoError(t, err)
	first[1] = 99

	second, err := store.GetMapping(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2}, second)
}

// TestKnowledgeStore_GroupsAndDelete tests listing and removal.
func TestKnowledgeStore_GroupsAndDelete(t *testing.T) {
	store := NewKnowledgeStore()
	ctx := context.Background()

	require.NoError(t, store.AddMapping(ctx, "beta", map[int]int{1: 1}))
	require.NoError(t, store.AddMapping(ctx, "alpha", map[int]int{2: 1}))

	groups, err := store.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, groups)

	require.NoError(t, store.DeleteGroup(ctx, "alpha"))
	groups, err = store.Groups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, groups)
}
