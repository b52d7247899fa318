package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/zen-garden/zenop/config"
	"github.com/zen-garden/zenop/core/carryover"
	"github.com/zen-garden/zenop/core/events"
	coremetrics "github.com/zen-garden/zenop/core/metrics"
	coremon "github.com/zen-garden/zenop/core/monitoring"
	"github.com/zen-garden/zenop/core/runlog"
	"github.com/zen-garden/zenop/infra/engine"
	"github.com/zen-garden/zenop/infra/logger"
	"github.com/zen-garden/zenop/infra/metrics"
	"github.com/zen-garden/zenop/infra/monitoring"
	"github.com/zen-garden/zenop/infra/mqtt"
	"github.com/zen-garden/zenop/infra/results"
	"github.com/zen-garden/zenop/internal/eventbus"
)

// notifyBuffer holds every step event of a run.
const notifyBuffer = 64

// Service wires the carryover pipeline to its engine, stores and observers.
type Service struct {
	Pipeline *carryover.Pipeline
	bus      *eventbus.TypedBus[events.StepEvent]
	store    runlog.Store
	sink     coremetrics.MetricsSink
	notifier *mqtt.Notifier
	notified <-chan struct{}
	monitor  coremon.Monitor
	log      logger.Logger
}

// New creates a Service from the configuration. grouping labels the pushed
// metrics of this run.
func New(cfg *config.Config, grouping map[string]string) (*Service, error) {
	logg := logger.New("service")

	store, err := runlog.Open(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink.SetGrouping(grouping)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		logg.Warnf("error monitoring disabled: %v", err)
		monitor = coremon.NopMonitor{}
	}

	svc := &Service{
		bus:     eventbus.NewTyped[events.StepEvent](),
		store:   store,
		sink:    sink,
		monitor: monitor,
		log:     logg,
	}
	if cfg.Notify.Enabled {
		n, err := mqtt.NewNotifier(cfg.Notify, logger.New("notify"))
		if err != nil {
			// Notifications are best effort; the run goes on without them.
			logg.Warnf("status notifications disabled: %v", err)
		} else {
			svc.notifier = n
			svc.notified = n.Listen(svc.bus.SubscribeSize(notifyBuffer))
		}
	}

	eng := engine.NewExecEngine(cfg.Engine, logger.New("engine"))
	svc.Pipeline = carryover.New(eng, results.Open, logger.New("carryover"))
	svc.Pipeline.SetRunLog(store)
	svc.Pipeline.SetMetrics(sink)
	svc.Pipeline.SetEvents(svc.bus)
	return svc, nil
}

// Run executes one carryover run.
func (s *Service) Run(ctx context.Context, opts carryover.Options) (*carryover.Report, error) {
	rep, err := s.Pipeline.Run(ctx, opts)
	if err != nil {
		tags := map[string]string{"dataset": opts.Dataset}
		if rep != nil {
			tags["run_id"] = rep.RunID
			if rep.Retained {
				s.log.Warnf("operation-only dataset kept for inspection: %s", rep.DatasetOp)
			}
		}
		var exitErr *engine.ExitError
		if errors.As(err, &exitErr) {
			tags["exit_code"] = strconv.Itoa(exitErr.ExitCode)
		}
		s.monitor.CaptureException(err, tags)
		return rep, err
	}
	s.log.Infow("run complete", map[string]any{
		"run_id":         rep.RunID,
		"dataset_op":     rep.DatasetOp,
		"tables_updated": len(rep.Updated),
		"tables_skipped": rep.Skipped,
		"retained":       rep.Retained,
	})
	return rep, nil
}

// Close drains pending notifications and reports, pushes metrics and closes
// the run log.
func (s *Service) Close() error {
	s.bus.Close()
	s.monitor.Flush(2 * time.Second)
	if s.notifier != nil {
		<-s.notified
		s.notifier.Close()
	}
	var errs []error
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("run log: %w", err))
	}
	return errors.Join(errs...)
}
