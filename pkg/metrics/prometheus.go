package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	rate         *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New registers the recorder on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder's collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		messagesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feecast_messages_sent_total",
				Help: "Total number of messages sent to a backend",
			},
			[]string{"backend", "topic"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feecast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		rate: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "feecast_annualized_rate",
				Help: "Most recent annualized rate by kind",
			},
			[]string{"kind"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feecast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, topic string) {
	r.messagesSent.WithLabelValues(backend, topic).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRates exports the three rates of the latest forecast.
func (r *Recorder) RecordRates(realized, inProgress, forecast float64) {
	r.rate.WithLabelValues("realized").Set(realized)
	r.rate.WithLabelValues("in_progress").Set(inProgress)
	r.rate.WithLabelValues("forecast").Set(forecast)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
