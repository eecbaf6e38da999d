package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(10))

	require.NoError(t, mc.Set(ctx, "k", sample{Name: "a", Value: 1.5}, time.Minute))

	var got sample
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, sample{Name: "a", Value: 1.5}, got)

	var raw []byte
	require.NoError(t, mc.Get(ctx, "k", &raw))
	assert.JSONEq(t, `{"name":"a","value":1.5}`, string(raw))

	require.NoError(t, mc.Set(ctx, "s", "plain", 0))
	var s string
	require.NoError(t, mc.Get(ctx, "s", &s))
	assert.Equal(t, "plain", s)
}

func TestMemoryCache_Miss(t *testing.T) {
	var got sample
	err := NewMemoryCache().Get(context.Background(), "nope", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	now := time.Unix(1700000000, 0)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	var s string
	require.NoError(t, mc.Get(ctx, "k", &s))

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	require.NoError(t, mc.Set(ctx, "a", "1", 0))
	require.NoError(t, mc.Set(ctx, "b", "2", 0))
	require.NoError(t, mc.Set(ctx, "c", "3", 0))

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "a", &s), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "c", &s))
	assert.Equal(t, "3", s)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	require.NoError(t, mc.Set(ctx, "a", "1", 0))
	require.NoError(t, mc.Set(ctx, "b", "2", 0))
	require.NoError(t, mc.Delete(ctx, "a", "b"))
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_TryLock(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	now := time.Unix(1700000000, 0)
	mc.now = func() time.Time { return now }

	ok, err := mc.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mc.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mc.Unlock(ctx, "job"))
	ok, _ = mc.TryLock(ctx, "job", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = mc.TryLock(ctx, "job", time.Minute)
	assert.True(t, ok, "expired lock is free again")
}

func TestMemoryCache_LockSurvivesEviction(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))

	ok, err := mc.TryLock(ctx, "job:forecast_refresh", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	for _, k := range []string{"forecast:asof:1", "forecast:asof:2", "forecast:asof:3"} {
		require.NoError(t, mc.Set(ctx, k, "x", time.Minute))
	}
	assert.Equal(t, 2, mc.Len())

	ok, err = mc.TryLock(ctx, "job:forecast_refresh", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lock still held after value churn")
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "forecast:1700000000:true", GenerateKeyWithParams("forecast", int64(1700000000), true))
	assert.Equal(t, "forecast", GenerateKeyWithParams("forecast"))
	assert.Equal(t, "a::b", GenerateKeyWithParams("a", "", "b"))
	assert.Equal(t, "fc:latest", GenerateKey("fc", "latest"))
}
