package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FeeCast/internal/domain/models"
	domrepo "FeeCast/internal/domain/repository"
	pkgkafka "FeeCast/pkg/kafka"
)

// SnapshotHandler consumes snapshot events and writes them to the store.
type SnapshotHandler struct {
	topic   string
	store   domrepo.SnapshotStore
	metrics domrepo.Metrics
}

var _ pkgkafka.MessageHandler = (*SnapshotHandler)(nil)

func NewSnapshotHandler(topic string, store domrepo.SnapshotStore, metrics domrepo.Metrics) *SnapshotHandler {
	return &SnapshotHandler{topic: topic, store: store, metrics: metrics}
}

func (h *SnapshotHandler) Topic() string { return h.topic }

func (h *SnapshotHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.SnapshotEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode snapshot event: %w", err)
	}
	if !ev.SentAt.IsZero() {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ev.SentAt).Seconds())
	}

	start := time.Now()
	err := h.store.StoreSnapshot(ctx, &ev.Snapshot)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", ev.Snapshot.Source)
	return nil
}
