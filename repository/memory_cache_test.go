package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "quote:1")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "quote:1", `{"tier":"Tier 1"}`))
	v, ok := c.Get(ctx, "quote:1")
	assert.True(t, ok)
	assert.Equal(t, `{"tier":"Tier 1"}`, v)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ExpiredEntryNotReturned(t *testing.T) {
	c := NewMemoryCache(10, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_ReclaimsExpiredKeysWithoutReads(t *testing.T) {
	c := NewMemoryCache(0, 50*time.Millisecond)
	ctx := context.Background()

	for _, k := range []string{"quote:a", "quote:b", "quote:c"} {
		require.NoError(t, c.Set(ctx, k, "{}"))
	}
	require.Equal(t, 3, c.Len())

	assert.Eventually(t, func() bool { return c.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryCache_SizeCapEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCache(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.Set(ctx, "b", "2"))
	_, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", "3"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
}
