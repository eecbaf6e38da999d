package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordMessageSent("kafka", "fee-forecasts")
	r.RecordMessageSent("kafka", "fee-forecasts")
	r.RecordError("subgraph")
	r.RecordRates(0.1, 0.2, 0.3)
	r.RecordLatency("forecast.run", 0.05)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.messagesSent.WithLabelValues("kafka", "fee-forecasts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("subgraph")))
	assert.Equal(t, 0.3, testutil.ToFloat64(r.rate.WithLabelValues("forecast")))
	assert.Equal(t, 0.2, testutil.ToFloat64(r.rate.WithLabelValues("in_progress")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}
