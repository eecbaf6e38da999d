package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeeCast/internal/domain/models"
	"FeeCast/internal/usecase"
	"FeeCast/pkg/cache"
	applogger "FeeCast/pkg/logger"
)

type stubRefresher struct {
	calls int
	err   error
}

func (r *stubRefresher) Refresh(context.Context) (*models.Forecast, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &models.Forecast{LastReset: 1674000000, ForecastRate: 0.2}, nil
}

type stubSyncer struct{ calls int }

func (s *stubSyncer) Sync(context.Context) error {
	s.calls++
	return nil
}

func TestScheduler_RefreshWarmsCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	r := &stubRefresher{}
	s := NewScheduler(ctx, r, applogger.Nop(), WithCache(c, time.Minute))

	s.RunRefreshNow()
	assert.Equal(t, 1, r.calls)

	var got models.Forecast
	require.NoError(t, c.Get(ctx, usecase.ForecastCacheKey(0), &got))
	assert.Equal(t, 0.2, got.ForecastRate)

	ok, err := c.TryLock(ctx, refreshLock, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock released after the job")
}

func TestScheduler_SkipsWhenLocked(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	r := &stubRefresher{}
	s := NewScheduler(ctx, r, nil, WithCache(c, time.Minute))

	ok, _ := c.TryLock(ctx, refreshLock, time.Minute)
	require.True(t, ok)

	s.RunRefreshNow()
	assert.Equal(t, 0, r.calls)
}

func TestScheduler_RefreshErrorLeavesCacheCold(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()
	s := NewScheduler(ctx, &stubRefresher{err: errors.New("down")}, nil, WithCache(c, time.Minute))

	s.RunRefreshNow()
	var got models.Forecast
	assert.ErrorIs(t, c.Get(ctx, usecase.ForecastCacheKey(0), &got), cache.ErrCacheMiss)
}

func TestScheduler_Sync(t *testing.T) {
	sy := &stubSyncer{}
	s := NewScheduler(context.Background(), &stubRefresher{}, nil, WithSync(sy, "0 0 * * * *"))
	s.RunSyncNow()
	assert.Equal(t, 1, sy.calls)

	NewScheduler(context.Background(), &stubRefresher{}, nil).RunSyncNow()
}

func TestScheduler_RegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRefresher{}, nil, WithSync(&stubSyncer{}, "0 0 * * * *"))
	require.NoError(t, s.RegisterAll("0 */5 * * * *"))
	assert.Len(t, s.cron.Entries(), 2)

	s = NewScheduler(context.Background(), &stubRefresher{}, nil)
	assert.Error(t, s.RegisterAll("every five minutes"))

	s = NewScheduler(context.Background(), &stubRefresher{}, nil, WithSync(&stubSyncer{}, "bad"))
	assert.Error(t, s.RegisterAll("0 */5 * * * *"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRefresher{}, nil)
	require.NoError(t, s.RegisterAll("0 0 0 1 1 *"))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
