package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"FeeCast/internal/domain/models"
	domrepo "FeeCast/internal/domain/repository"
)

// EventPublisher is what the Kafka publisher needs from pkg/kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaPublisher emits snapshot and forecast events.
type KafkaPublisher struct {
	producer      EventPublisher
	snapshotTopic string
	forecastTopic string
	now           func() time.Time
}

var (
	_ domrepo.SnapshotPublisher = (*KafkaPublisher)(nil)
	_ domrepo.ForecastPublisher = (*KafkaPublisher)(nil)
)

func NewKafkaPublisher(producer EventPublisher, snapshotTopic, forecastTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer:      producer,
		snapshotTopic: snapshotTopic,
		forecastTopic: forecastTopic,
		now:           time.Now,
	}
}

// PublishSnapshot is keyed by source so one source stays on one partition.
func (p *KafkaPublisher) PublishSnapshot(ctx context.Context, s *models.Snapshot) error {
	if s == nil {
		return nil
	}
	ev := models.SnapshotEvent{ID: uuid.NewString(), Snapshot: *s, SentAt: p.now().UTC()}
	if err := p.producer.Publish(ctx, p.snapshotTopic, []byte(s.Source), ev); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// PublishForecast is keyed by the cycle start so events of one cycle stay ordered.
func (p *KafkaPublisher) PublishForecast(ctx context.Context, f *models.Forecast) error {
	if f == nil {
		return nil
	}
	ev := models.ForecastEvent{ID: uuid.NewString(), Forecast: *f, SentAt: p.now().UTC()}
	key := []byte(strconv.FormatInt(f.LastReset, 10))
	if err := p.producer.Publish(ctx, p.forecastTopic, key, ev); err != nil {
		return fmt.Errorf("publish forecast: %w", err)
	}
	return nil
}
