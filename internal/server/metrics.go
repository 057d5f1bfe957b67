package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors the server updates.
type Metrics struct {
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the server collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rx_documents_checked_total",
				Help: "Documents checked, by schema and result.",
			},
			[]string{"schema", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rx_check_duration_seconds",
				Help:    "Time to decode and check one request body.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"schema"},
		),
	}
	reg.MustRegister(m.checks, m.duration)
	return m
}

func (m *Metrics) observe(schema string, valid, invalid int, seconds float64) {
	m.checks.WithLabelValues(schema, "valid").Add(float64(valid))
	m.checks.WithLabelValues(schema, "invalid").Add(float64(invalid))
	m.duration.WithLabelValues(schema).Observe(seconds)
}
