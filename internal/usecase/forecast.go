package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FeeCast/internal/domain/models"
	domrepo "FeeCast/internal/domain/repository"
	"FeeCast/internal/domain/service"
	applogger "FeeCast/pkg/logger"
)

const (
	secondsPerDay = 86400
	// maxLookbackDays caps how far back as_of may reach.
	maxLookbackDays = 365
)

var (
	ErrUpstream   = errors.New("usecase: upstream fetch failed")
	ErrFutureAsOf = errors.New("usecase: as_of is in the future")
	ErrAsOfTooOld = errors.New("usecase: as_of is too far in the past")
)

// ForecastOption configures ForecastUseCase.
type ForecastOption func(*ForecastUseCase)

// ForecastUseCase fetches a snapshot from the configured source and runs the
// forecaster on it.
type ForecastUseCase struct {
	source            domrepo.FeeSource
	engine            service.Forecaster
	metrics           domrepo.Metrics
	publisher         domrepo.ForecastPublisher
	historyDays       int
	valuationDecimals int32
	feeDecimals       int32
	timeout           time.Duration
	l                 *applogger.Logger
	now               func() time.Time
}

func NewForecastUseCase(source domrepo.FeeSource, engine service.Forecaster, metrics domrepo.Metrics, opts ...ForecastOption) *ForecastUseCase {
	uc := &ForecastUseCase{
		source:            source,
		engine:            engine,
		metrics:           metrics,
		historyDays:       84,
		valuationDecimals: 18,
		feeDecimals:       30,
		timeout:           20 * time.Second,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// WithHistoryDays sets how many daily buckets one computation fetches.
func WithHistoryDays(days int) ForecastOption {
	return func(uc *ForecastUseCase) {
		if days > 0 {
			uc.historyDays = days
		}
	}
}

func WithDecimals(valuation, fee int32) ForecastOption {
	return func(uc *ForecastUseCase) {
		uc.valuationDecimals = valuation
		uc.feeDecimals = fee
	}
}

func WithTimeout(d time.Duration) ForecastOption {
	return func(uc *ForecastUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithForecastPublisher makes Refresh emit a forecast event. p may be nil.
func WithForecastPublisher(p domrepo.ForecastPublisher) ForecastOption {
	return func(uc *ForecastUseCase) { uc.publisher = p }
}

func WithLogger(l *applogger.Logger) ForecastOption {
	return func(uc *ForecastUseCase) { uc.l = l }
}

func WithClock(now func() time.Time) ForecastOption {
	return func(uc *ForecastUseCase) { uc.now = now }
}

// Compute runs the forecast as of asOf (unix seconds). Zero means now.
// A past asOf widens the fetch so its window is still covered; the pool
// valuation is always the latest one the source has.
func (uc *ForecastUseCase) Compute(ctx context.Context, asOf int64) (*models.Forecast, error) {
	now := uc.now().Unix()
	if asOf == 0 {
		asOf = now
	}
	if asOf > now {
		return nil, ErrFutureAsOf
	}
	lookback := int((now - asOf + secondsPerDay - 1) / secondsPerDay)
	if lookback > maxLookbackDays {
		return nil, ErrAsOfTooOld
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	snap, err := uc.source.LatestSnapshot(ctx, uc.historyDays+lookback)
	uc.metrics.RecordLatency("forecast_fetch", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordError("forecast_fetch")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("fetch snapshot: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	out, err := uc.engine.Run(models.ForecastInput{
		PoolValuationRaw:  snap.PoolValuationRaw,
		ValuationDecimals: uc.valuationDecimals,
		Records:           snap.Records,
		FeeDecimals:       uc.feeDecimals,
		Now:               asOf,
	})
	if err != nil {
		uc.metrics.RecordError("forecast_engine")
		if uc.l != nil {
			uc.l.Warn("forecast.run failed",
				applogger.Int64("as_of", asOf),
				applogger.String("source", snap.Source),
				applogger.Int("records", len(snap.Records)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("run forecast: %w", err)
	}
	uc.metrics.RecordLatency("forecast_compute", time.Since(start).Seconds())

	if uc.l != nil {
		uc.l.Debug("forecast.run ok",
			applogger.Int64("as_of", asOf),
			applogger.Int64("last_reset", out.LastReset),
			applogger.Float64("forecast_rate", out.ForecastRate),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Refresh computes the current forecast, exports its rates and publishes it
// when a publisher is configured. Publish failures are logged, not returned.
func (uc *ForecastUseCase) Refresh(ctx context.Context) (*models.Forecast, error) {
	out, err := uc.Compute(ctx, 0)
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordRates(out.RealizedRate, out.InProgressRate, out.ForecastRate)

	if uc.publisher != nil {
		if err := uc.publisher.PublishForecast(ctx, out); err != nil {
			uc.metrics.RecordError("forecast_publish")
			if uc.l != nil {
				uc.l.Error("forecast.publish failed", applogger.Error(err))
			}
		} else {
			uc.metrics.RecordMessageSent("kafka", "forecast")
		}
	}
	return out, nil
}
