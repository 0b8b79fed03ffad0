package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/coldmail-tracker/internal/model"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestStatsCacheRoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewStatsCache(client, "test:stats", time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache should miss")

	st := model.Stats{Total: 4, Opened: 2, OpenRate: "50.0"}
	require.NoError(t, c.Set(ctx, 0, st))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, st, *got)
}

func TestStatsCacheEmptyRatesSurvive(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewStatsCache(client, "", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, model.Stats{}))
	got, err := c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.Rate(""), got.OpenRate)
}

func TestStatsCacheInvalidate(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewStatsCache(client, "test:stats", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, model.Stats{Total: 1}))
	assert.True(t, mr.Exists("test:stats"))

	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists("test:stats"))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestStatsCacheSetAfterInvalidateIsStale(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewStatsCache(client, "test:stats", time.Minute)
	ctx := context.Background()

	// reader takes the generation, then a write invalidates before it stores
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))

	err = c.Set(ctx, gen, model.Stats{Total: 0})
	assert.ErrorIs(t, err, ErrStale)
	assert.False(t, mr.Exists("test:stats"))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// a reader that starts after the write may store
	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, gen, model.Stats{Total: 1}))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Total)
}

func TestStatsCacheExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewStatsCache(client, "test:stats", 10*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, model.Stats{Total: 1}))
	mr.FastForward(11 * time.Second)

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStatsCacheCorruptEntryIsMiss(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewStatsCache(client, "test:stats", time.Minute)
	require.NoError(t, mr.Set("test:stats", "{not json"))

	got, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("test:stats"))
}

func TestConnect(t *testing.T) {
	_, mr := setupTestRedis(t)
	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()

	_, err = Connect(context.Background(), "://bad")
	assert.Error(t, err)
}
