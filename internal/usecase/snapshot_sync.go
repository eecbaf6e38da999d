package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "FeeCast/internal/domain/repository"
	applogger "FeeCast/pkg/logger"
)

// SnapshotSyncUseCase copies the upstream snapshot onto the event bus so the
// ingestion consumer can persist it.
type SnapshotSyncUseCase struct {
	source    domrepo.FeeSource
	publisher domrepo.SnapshotPublisher
	metrics   domrepo.Metrics
	days      int
	l         *applogger.Logger
}

func NewSnapshotSyncUseCase(source domrepo.FeeSource, publisher domrepo.SnapshotPublisher, metrics domrepo.Metrics, days int, l *applogger.Logger) *SnapshotSyncUseCase {
	return &SnapshotSyncUseCase{source: source, publisher: publisher, metrics: metrics, days: days, l: l}
}

func (uc *SnapshotSyncUseCase) Sync(ctx context.Context) error {
	start := time.Now()
	snap, err := uc.source.LatestSnapshot(ctx, uc.days)
	if err != nil {
		uc.metrics.RecordError("sync_fetch")
		return fmt.Errorf("sync fetch: %w", err)
	}
	if err := uc.publisher.PublishSnapshot(ctx, snap); err != nil {
		uc.metrics.RecordError("sync_publish")
		return fmt.Errorf("sync publish: %w", err)
	}
	uc.metrics.RecordMessageSent("kafka", "snapshot")
	uc.metrics.RecordLatency("snapshot_sync", time.Since(start).Seconds())

	if uc.l != nil {
		uc.l.Info("snapshot.sync ok",
			applogger.String("source", snap.Source),
			applogger.Int("records", len(snap.Records)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}
