package usecase

import (
	"context"
	"sync"

	"FeeCast/internal/domain/models"
)

type fakeSource struct {
	snap     *models.Snapshot
	err      error
	lastDays int
}

func (f *fakeSource) LatestSnapshot(_ context.Context, days int) (*models.Snapshot, error) {
	f.lastDays = days
	return f.snap, f.err
}

type fakeEngine struct {
	out  *models.Forecast
	err  error
	last models.ForecastInput
}

func (f *fakeEngine) Run(in models.ForecastInput) (*models.Forecast, error) {
	f.last = in
	return f.out, f.err
}

type fakeMetrics struct {
	mu     sync.Mutex
	sent   []string
	errors []string
	rates  [][3]float64
}

func (m *fakeMetrics) RecordMessageSent(backend, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, backend+"/"+topic)
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *fakeMetrics) RecordRates(realized, inProgress, forecast float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, [3]float64{realized, inProgress, forecast})
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakePublisher struct {
	forecasts []*models.Forecast
	snapshots []*models.Snapshot
	err       error
}

func (p *fakePublisher) PublishForecast(_ context.Context, f *models.Forecast) error {
	p.forecasts = append(p.forecasts, f)
	return p.err
}

func (p *fakePublisher) PublishSnapshot(_ context.Context, s *models.Snapshot) error {
	p.snapshots = append(p.snapshots, s)
	return p.err
}

type fakeStore struct {
	stored []*models.Snapshot
	err    error
}

func (s *fakeStore) Init(context.Context) error   { return nil }
func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) StoreSnapshot(_ context.Context, snap *models.Snapshot) error {
	s.stored = append(s.stored, snap)
	return s.err
}
