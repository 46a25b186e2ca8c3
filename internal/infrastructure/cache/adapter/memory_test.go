package adapter

import (
	"context"
	"testing"
	"time"

	"evento-chat/internal/infrastructure/cache/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "presence:bob", "online", 45*time.Second))
	require.NoError(t, c.Set(ctx, "sticky", "v", 0))

	v, err := c.Get(ctx, "presence:bob")
	require.NoError(t, err)
	assert.Equal(t, "online", v)

	now = now.Add(45 * time.Second)
	_, err = c.Get(ctx, "presence:bob")
	assert.ErrorIs(t, err, port.ErrMiss)

	v, err = c.Get(ctx, "sticky")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestMemoryCacheDel(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	_ = c.Set(ctx, "a", "1", 0)
	_ = c.Set(ctx, "b", "2", 0)

	n, err := c.Del(ctx, "a", "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, port.ErrMiss)
}

func TestMemoryCacheKeysWithPrefix(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "presence:bob:s1", "a", 45*time.Second))
	require.NoError(t, c.Set(ctx, "presence:bob:s2", "b", 10*time.Second))
	require.NoError(t, c.Set(ctx, "presence:bobby:s3", "c", 45*time.Second))

	keys, err := c.KeysWithPrefix(ctx, "presence:bob:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"presence:bob:s1", "presence:bob:s2"}, keys)

	now = now.Add(10 * time.Second)
	keys, err = c.KeysWithPrefix(ctx, "presence:bob:")
	require.NoError(t, err)
	assert.Equal(t, []string{"presence:bob:s1"}, keys)
}
