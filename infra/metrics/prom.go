package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/zen-garden/zenop/core/events"
	coremetrics "github.com/zen-garden/zenop/core/metrics"
)

// PromSink records pipeline steps and table updates in Prometheus metrics.
type PromSink struct {
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tables   *prometheus.CounterVec
	rows     *prometheus.CounterVec

	gatherer prometheus.Gatherer
	pushURL  string
	job      string
	grouping map[string]string
}

// NewPromSink registers the pipeline metrics on a dedicated registry that is
// pushed to cfg.PushgatewayURL on Flush.
func NewPromSink(cfg Config) (*PromSink, error) {
	cfg.SetDefaults()
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		return nil, err
	}
	s.gatherer = reg
	s.pushURL = cfg.PushgatewayURL
	s.job = cfg.JobName
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zenop_steps_total",
		Help: "Pipeline step transitions by step and status",
	}, []string{"step", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zenop_step_duration_seconds",
		Help:    "Duration of finished pipeline steps",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 12),
	}, []string{"step", "status"})
	tables := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zenop_capacity_tables_updated_total",
		Help: "Existing capacity tables rewritten with carried over additions",
	}, []string{"category", "kind"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zenop_capacity_rows_added_total",
		Help: "Capacity addition rows merged into existing tables",
	}, []string{"category", "kind"})

	var err error
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if tables, err = register(reg, tables); err != nil {
		return nil, err
	}
	if rows, err = register(reg, rows); err != nil {
		return nil, err
	}
	return &PromSink{steps: steps, duration: duration, tables: tables, rows: rows}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// SetGrouping sets the push gateway grouping labels, e.g. dataset and job index.
func (s *PromSink) SetGrouping(labels map[string]string) { s.grouping = labels }

// RecordStep counts the transition and observes durations of finished steps.
func (s *PromSink) RecordStep(ev events.StepEvent) error {
	s.steps.WithLabelValues(string(ev.Step), string(ev.Status)).Inc()
	if ev.Status == events.StatusSucceeded || ev.Status == events.StatusFailed {
		s.duration.WithLabelValues(string(ev.Step), string(ev.Status)).Observe(ev.Duration.Seconds())
	}
	return nil
}

// RecordTable counts the rewritten table and the merged rows.
func (s *PromSink) RecordTable(ev events.TableEvent) error {
	s.tables.WithLabelValues(ev.Category, ev.Kind).Inc()
	s.rows.WithLabelValues(ev.Category, ev.Kind).Add(float64(ev.Added))
	return nil
}

// Flush pushes the collected metrics when a push gateway is configured.
func (s *PromSink) Flush() error {
	if s.pushURL == "" || s.gatherer == nil {
		return nil
	}
	p := push.New(s.pushURL, s.job).Gatherer(s.gatherer)
	for k, v := range s.grouping {
		p = p.Grouping(k, v)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

var _ coremetrics.MetricsSink = (*PromSink)(nil)
var _ coremetrics.Flusher = (*PromSink)(nil)
