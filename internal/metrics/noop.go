package metrics

// NoopCollector discards all metrics. Used in tests and when metrics are
// disabled.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (n *NoopCollector) RecordOutcome(operation string, outcome string)    {}
func (n *NoopCollector) RecordDuration(operation string, durationMs int64) {}
func (n *NoopCollector) RecordError(operation string, errorType string)    {}
func (n *NoopCollector) SetTierCount(tier string, count int64)             {}
