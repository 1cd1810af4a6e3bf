package metrics

// Collector is the interface for metrics collection. Implementations include
// the Prometheus-backed collector and the no-op collector used in tests.
type Collector interface {
	RecordOutcome(operation string, outcome string)
	RecordDuration(operation string, durationMs int64)
	RecordError(operation string, errorType string)
	SetTierCount(tier string, count int64)
}
