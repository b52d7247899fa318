package metrics

import "github.com/zen-garden/zenop/core/events"

// MetricsSink records pipeline observations.
type MetricsSink interface {
	RecordStep(ev events.StepEvent) error
	RecordTable(ev events.TableEvent) error
}

// Flusher is implemented by sinks that buffer observations, e.g. for a
// Prometheus push gateway.
type Flusher interface {
	Flush() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(events.StepEvent) error   { return nil }
func (NopSink) RecordTable(events.TableEvent) error { return nil }
