package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTour struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	var got cachedTour
	assert.ErrorIs(t, cache.Get(ctx, "tour:1", &got), ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "tour:1", cachedTour{ID: "1", Price: 25}, time.Minute))
	require.NoError(t, cache.Get(ctx, "tour:1", &got))
	assert.Equal(t, cachedTour{ID: "1", Price: 25}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, cache.Get(ctx, "tour:1", &got), ErrCacheMiss)
}

func TestRedisCacheDeletePrefix(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tours:list:a", []string{"x"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "tours:list:b", []string{"y"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "tour:1", cachedTour{ID: "1"}, time.Minute))

	require.NoError(t, cache.DeletePrefix(ctx, "tours:list:"))

	assert.False(t, mr.Exists("tours:list:a"))
	assert.False(t, mr.Exists("tours:list:b"))
	assert.True(t, mr.Exists("tour:1"))
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	cache := NewCache(nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	var v int
	assert.ErrorIs(t, cache.Get(ctx, "k", &v), ErrCacheMiss)
	assert.NoError(t, cache.DeletePrefix(ctx, "k"))
}
