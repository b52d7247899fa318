package metrics

import (
	"errors"

	"github.com/zen-garden/zenop/core/events"
)

// MultiSink fans out observations to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordStep(ev events.StepEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTable forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTable(ev events.TableEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTable(ev); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every sink implementing Flusher and joins their errors.
func (m *MultiSink) Flush() error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}
