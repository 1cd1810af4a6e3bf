package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector provides Prometheus metrics for engine operations.
type PrometheusCollector struct {
	outcomesTotal     *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	tierCount         *prometheus.GaugeVec
	registry          *prometheus.Registry
}

// NewPrometheusCollector creates a collector with its own registry.
func NewPrometheusCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	outcomesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trellis_outcomes_total",
			Help: "Candidate processing outcomes by operation and result",
		},
		[]string{"operation", "outcome"},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trellis_operation_duration_seconds",
			Help:    "Duration of engine operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"operation"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trellis_errors_total",
			Help: "Errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	tierCount := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trellis_tier_count",
			Help: "Current node count by memory tier",
		},
		[]string{"tier"},
	)

	registry.MustRegister(outcomesTotal)
	registry.MustRegister(operationDuration)
	registry.MustRegister(errorsTotal)
	registry.MustRegister(tierCount)

	return &PrometheusCollector{
		outcomesTotal:     outcomesTotal,
		operationDuration: operationDuration,
		errorsTotal:       errorsTotal,
		tierCount:         tierCount,
		registry:          registry,
	}
}

// RecordOutcome counts one processing outcome.
func (m *PrometheusCollector) RecordOutcome(operation string, outcome string) {
	m.outcomesTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordDuration observes an operation's duration.
func (m *PrometheusCollector) RecordDuration(operation string, durationMs int64) {
	m.operationDuration.WithLabelValues(operation).Observe(float64(durationMs) / 1000.0)
}

// RecordError counts an error occurrence.
func (m *PrometheusCollector) RecordError(operation string, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetTierCount records the current size of a memory tier.
func (m *PrometheusCollector) SetTierCount(tier string, count int64) {
	m.tierCount.WithLabelValues(tier).Set(float64(count))
}

// Handler returns an http.Handler serving this collector's registry.
func (m *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
