package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:"), mr
}

func counting(calls *int32, p *profile) func(context.Context) (*profile, error) {
	return func(context.Context) (*profile, error) {
		atomic.AddInt32(calls, 1)
		return p, nil
	}
}

func TestGetOrLoadJSON_LoadsOnceThenHits(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	var calls int32
	load := counting(&calls, &profile{ID: 1, Name: "Ann"})

	first, err := GetOrLoadJSON(c, ctx, "user:1", time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoadJSON(c, ctx, "user:1", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, "Ann", first.Name)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("test:user:1"))
	assert.Equal(t, time.Minute, mr.TTL("test:user:1"))
}

func TestGetOrLoadJSON_ErrorNotCached(t *testing.T) {
	c, mr := setupCache(t)
	boom := errors.New("boom")
	_, err := GetOrLoadJSON(c, context.Background(), "user:2", time.Minute, func(context.Context) (*profile, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:user:2"))
}

func TestGetOrLoadJSON_CorruptEntryReloads(t *testing.T) {
	c, mr := setupCache(t)
	require.NoError(t, mr.Set("test:user:3", "{not json"))
	var calls int32

	got, err := GetOrLoadJSON(c, context.Background(), "user:3", time.Minute, counting(&calls, &profile{ID: 3, Name: "Bob"}))
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, mr.Exists("test:user:3"))
}

func TestGetOrLoad_RedisDownFallsBackToLoad(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()
	var calls int32

	got, err := GetOrLoadJSON(c, context.Background(), "user:4", time.Minute, counting(&calls, &profile{ID: 4}))
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDelete(t *testing.T) {
	c, mr := setupCache(t)
	require.NoError(t, mr.Set("test:k", "v"))
	require.NoError(t, c.Delete(context.Background(), "k"))
	assert.False(t, mr.Exists("test:k"))
}
