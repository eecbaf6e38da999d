package repository

import (
	"context"

	"FeeCast/internal/domain/models"
)

// FeeSource supplies the latest pool valuation and the most recent daily fee
// buckets. days bounds how many daily buckets are returned.
type FeeSource interface {
	LatestSnapshot(ctx context.Context, days int) (*models.Snapshot, error)
}

// SnapshotStore persists ingested snapshots so they can later serve as a FeeSource.
type SnapshotStore interface {
	Init(ctx context.Context) error // ensure tables
	StoreSnapshot(ctx context.Context, s *models.Snapshot) error
	Health(ctx context.Context) error
}

type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, s *models.Snapshot) error
}

type ForecastPublisher interface {
	PublishForecast(ctx context.Context, f *models.Forecast) error
}

type Metrics interface {
	RecordMessageSent(backend, topic string)
	RecordError(kind string)
	RecordRates(realized, inProgress, forecast float64)
	RecordLatency(op string, seconds float64)
}
