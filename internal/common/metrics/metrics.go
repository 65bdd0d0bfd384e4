package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the envelope service.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railx_envelope_operations_total",
			Help: "Envelope seal/open operations by outcome and error kind",
		}, []string{"operation", "outcome", "kind"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "railx_envelope_operation_duration_seconds",
			Help:    "Latency of envelope seal/open operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Operations, m.Duration)
	return m
}

// Observe records one finished operation. kind is empty on success.
func (m *Metrics) Observe(operation, kind string, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if kind != "" {
		outcome = "failure"
	}
	m.Operations.WithLabelValues(operation, outcome, kind).Inc()
	m.Duration.WithLabelValues(operation).Observe(seconds)
}
