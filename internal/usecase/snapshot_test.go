package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeeCast/internal/domain/models"
)

func TestSnapshotSync(t *testing.T) {
	snap := &models.Snapshot{Source: "subgraph", Records: []models.RawFeeRecord{{Timestamp: 1}}}
	src := &fakeSource{snap: snap}
	pub := &fakePublisher{}
	m := &fakeMetrics{}

	require.NoError(t, NewSnapshotSyncUseCase(src, pub, m, 84, nil).Sync(context.Background()))
	assert.Equal(t, 84, src.lastDays)
	assert.Equal(t, []*models.Snapshot{snap}, pub.snapshots)
	assert.Equal(t, []string{"kafka/snapshot"}, m.sent)
}

func TestSnapshotSync_Errors(t *testing.T) {
	m := &fakeMetrics{}
	err := NewSnapshotSyncUseCase(&fakeSource{err: errors.New("down")}, &fakePublisher{}, m, 1, nil).Sync(context.Background())
	assert.Error(t, err)

	pub := &fakePublisher{err: errors.New("no broker")}
	err = NewSnapshotSyncUseCase(&fakeSource{snap: &models.Snapshot{}}, pub, m, 1, nil).Sync(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"sync_fetch", "sync_publish"}, m.errors)
}

func TestSnapshotHandler(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMetrics{}
	h := NewSnapshotHandler("fee-snapshots", store, m)
	assert.Equal(t, "fee-snapshots", h.Topic())

	b, err := json.Marshal(models.SnapshotEvent{
		ID:       "id-1",
		Snapshot: models.Snapshot{PoolValuationRaw: "5", Source: "subgraph"},
		SentAt:   time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), b))
	require.Len(t, store.stored, 1)
	assert.Equal(t, "5", store.stored[0].PoolValuationRaw)
	assert.Equal(t, []string{"clickhouse/subgraph"}, m.sent)
}

func TestSnapshotHandler_Errors(t *testing.T) {
	m := &fakeMetrics{}
	h := NewSnapshotHandler("t", &fakeStore{err: errors.New("ch down")}, m)

	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"snapshot":{}}`)))
	assert.Equal(t, []string{"consumer_unmarshal", "consumer_store"}, m.errors)
}
