package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (RatingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRatingCache(client), mr
}

func TestRatingCache_SetGetInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, _, ok, err := cache.Get(ctx, "content-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "content-1", 4.5, 2))
	average, count, ok, err := cache.Get(ctx, "content-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4.5, average)
	assert.Equal(t, int64(2), count)

	require.NoError(t, cache.Invalidate(ctx, "content-1"))
	_, _, ok, err = cache.Get(ctx, "content-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRatingCache_Expires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "content-1", 3, 1))
	mr.FastForward(ratingTTL + time.Second)

	_, _, ok, err := cache.Get(ctx, "content-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
