package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"FeeCast/internal/domain/models"
	"FeeCast/internal/usecase"
	"FeeCast/pkg/cache"
	applogger "FeeCast/pkg/logger"
)

const (
	refreshLock = "job:forecast_refresh"
	syncLock    = "job:snapshot_sync"
)

// Refresher recomputes the live forecast.
type Refresher interface {
	Refresh(ctx context.Context) (*models.Forecast, error)
}

// Syncer copies the upstream snapshot into the ingestion pipeline.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Option configures Scheduler.
type Option func(*Scheduler)

// Scheduler runs the periodic forecast refresh and, when configured, the
// snapshot sync. Jobs take a cache lock so only one replica runs each tick.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	refresher  Refresher
	syncer     Syncer
	syncSpec   string
	cache      cache.Service
	cacheTTL   time.Duration
	jobTimeout time.Duration
	l          *applogger.Logger
}

func NewScheduler(ctx context.Context, refresher Refresher, l *applogger.Logger, opts ...Option) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		ctx:        ctx,
		refresher:  refresher,
		jobTimeout: time.Minute,
		l:          l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSync adds the snapshot sync job on the given cron schedule.
func WithSync(syncer Syncer, spec string) Option {
	return func(s *Scheduler) {
		s.syncer = syncer
		s.syncSpec = spec
	}
}

// WithCache enables job locks and warms the live forecast entry for ttl.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// RegisterAll registers the refresh job on refreshSpec and the sync job if any.
func (s *Scheduler) RegisterAll(refreshSpec string) error {
	if _, err := s.cron.AddFunc(refreshSpec, s.RunRefreshNow); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	if s.syncer != nil {
		if _, err := s.cron.AddFunc(s.syncSpec, s.RunSyncNow); err != nil {
			return fmt.Errorf("register sync job: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.l.Info("scheduler stopped")
}

// RunRefreshNow recomputes the forecast and warms the cache.
func (s *Scheduler) RunRefreshNow() {
	s.locked(refreshLock, func(ctx context.Context) {
		start := time.Now()
		f, err := s.refresher.Refresh(ctx)
		if err != nil {
			s.l.Error("scheduler.refresh failed", applogger.Error(err))
			return
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, usecase.ForecastCacheKey(0), f, s.cacheTTL); err != nil {
				s.l.Warn("scheduler.refresh cache_set_error", applogger.Error(err))
			}
		}
		s.l.Info("scheduler.refresh ok",
			applogger.Float64("forecast_rate", f.ForecastRate),
			applogger.Float64("realized_rate", f.RealizedRate),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	})
}

func (s *Scheduler) RunSyncNow() {
	if s.syncer == nil {
		return
	}
	s.locked(syncLock, func(ctx context.Context) {
		if err := s.syncer.Sync(ctx); err != nil {
			s.l.Error("scheduler.sync failed", applogger.Error(err))
		}
	})
}

func (s *Scheduler) locked(key string, job func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(s.ctx, s.jobTimeout)
	defer cancel()

	if s.cache != nil {
		ok, err := s.cache.TryLock(ctx, key, s.jobTimeout)
		if err != nil {
			s.l.Warn("scheduler lock error", applogger.String("job", key), applogger.Error(err))
			return
		}
		if !ok {
			s.l.Debug("scheduler job held elsewhere", applogger.String("job", key))
			return
		}
		defer func() {
			if err := s.cache.Unlock(context.WithoutCancel(ctx), key); err != nil {
				s.l.Warn("scheduler unlock error", applogger.String("job", key), applogger.Error(err))
			}
		}()
	}
	job(ctx)
}
