package carryover

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zen-garden/zenop/core/capacity"
	"github.com/zen-garden/zenop/core/engine"
	"github.com/zen-garden/zenop/core/events"
	"github.com/zen-garden/zenop/core/logger"
	"github.com/zen-garden/zenop/core/metrics"
	"github.com/zen-garden/zenop/core/results"
	"github.com/zen-garden/zenop/core/runlog"
	"github.com/zen-garden/zenop/internal/eventbus"
	"github.com/zen-garden/zenop/internal/fsutil"
)

// Pipeline carries capacity additions of a base run into an operation-only run.
type Pipeline struct {
	engine engine.Engine
	open   results.Opener
	log    logger.Logger
	sink   metrics.MetricsSink
	bus    *eventbus.TypedBus[events.StepEvent]
	store  runlog.Store
	now    func() time.Time
	newID  func() string
}

// New creates a Pipeline. Metrics, events and the run log are optional.
func New(eng engine.Engine, open results.Opener, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop{}
	}
	return &Pipeline{
		engine: eng,
		open:   open,
		log:    log,
		sink:   metrics.NopSink{},
		store:  runlog.NopStore{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetMetrics sets the sink receiving step and table observations.
func (p *Pipeline) SetMetrics(s metrics.MetricsSink) {
	if s == nil {
		s = metrics.NopSink{}
	}
	p.sink = s
}

// SetEvents sets the bus step events are published on.
func (p *Pipeline) SetEvents(bus *eventbus.TypedBus[events.StepEvent]) { p.bus = bus }

// SetRunLog sets the store receiving one record per step transition.
func (p *Pipeline) SetRunLog(s runlog.Store) {
	if s == nil {
		s = runlog.NopStore{}
	}
	p.store = s
}

type run struct {
	p    *Pipeline
	opts Options
	rep  *Report
}

// Run executes the pipeline. The returned report is non-nil whenever the
// operation-only dataset path could be derived, also on failure.
func (p *Pipeline) Run(ctx context.Context, opts Options) (rep *Report, err error) {
	datasetOp, err := OperationDataset(opts.Dataset, opts.DatasetOp)
	if err != nil {
		return nil, err
	}
	rep = &Report{
		RunID:     p.newID(),
		Dataset:   opts.Dataset,
		DatasetOp: datasetOp,
		Durations: make(map[events.Step]time.Duration),
		Retained:  !opts.DeleteData,
	}
	r := &run{p: p, opts: opts, rep: rep}
	p.log.Infow("carryover started", map[string]any{
		"run_id": rep.RunID, "dataset": opts.Dataset, "dataset_op": datasetOp,
	})

	if opts.DeleteData {
		defer func() {
			cctx := context.WithoutCancel(ctx)
			if cerr := r.step(cctx, events.StepCleanup, func() error { return os.RemoveAll(datasetOp) }); cerr != nil {
				p.log.Warnf("operation-only dataset %s left on disk: %v", datasetOp, cerr)
				rep.Retained = true
			}
		}()
	} else {
		defer func() {
			p.log.Infof("operation-only dataset retained: %s", datasetOp)
			r.emit(context.WithoutCancel(ctx), events.StepEvent{
				Step: events.StepCleanup, Status: events.StatusSkipped, Time: p.now(),
			})
		}()
	}

	if err := r.step(ctx, events.StepDuplicate, func() error {
		return fsutil.ReplaceDir(opts.Dataset, datasetOp)
	}); err != nil {
		return rep, fmt.Errorf("duplicate dataset: %w", err)
	}

	if err := r.step(ctx, events.StepBaseRun, func() error {
		return p.engine.Run(ctx, engine.Run{
			Dataset:      opts.Dataset,
			Config:       opts.Config,
			FolderOutput: opts.FolderOutput,
			JobIndex:     opts.JobIndex,
		})
	}); err != nil {
		return rep, fmt.Errorf("base run: %w", err)
	}

	var reader results.Reader
	if err := r.step(ctx, events.StepLoadResults, func() (lerr error) {
		reader, lerr = r.loadResults()
		return lerr
	}); err != nil {
		return rep, fmt.Errorf("load results: %w", err)
	}

	var additions *capacity.Frame
	var catalog capacity.Catalog
	if err := r.step(ctx, events.StepReindex, func() (rerr error) {
		additions, catalog, rerr = reindex(reader)
		return rerr
	}); err != nil {
		return rep, fmt.Errorf("reindex %s: %w", CapacityAddition, err)
	}

	if err := r.step(ctx, events.StepMerge, func() error {
		return r.merge(ctx, additions, catalog)
	}); err != nil {
		return rep, fmt.Errorf("merge capacities: %w", err)
	}

	configOp := opts.ConfigOp
	if configOp == "" {
		configOp = opts.Config
	}
	if err := r.step(ctx, events.StepOperationRun, func() error {
		return p.engine.Run(ctx, engine.Run{
			Dataset:       datasetOp,
			Config:        configOp,
			FolderOutput:  opts.FolderOutput,
			JobIndexOp:    opts.JobIndexOp,
			ScenariosOp:   opts.ScenariosOp,
			OperationOnly: true,
		})
	}); err != nil {
		return rep, fmt.Errorf("operation-only run: %w", err)
	}

	p.log.Infow("carryover finished", map[string]any{
		"run_id": rep.RunID, "tables_updated": len(rep.Updated), "skipped": rep.Skipped,
	})
	return rep, nil
}

func (r *run) loadResults() (results.Reader, error) {
	dir := engine.OutputDir(r.opts.Dataset, r.opts.FolderOutput)
	reader, err := r.p.open(dir)
	if err != nil {
		return nil, err
	}
	ok, err := results.HasComponent(reader, results.CategoryVariable, CapacityAddition)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrMissingCapacityAddition, dir)
	}
	return reader, nil
}

func reindex(reader results.Reader) (*capacity.Frame, capacity.Catalog, error) {
	total, err := reader.Total(CapacityAddition)
	if err != nil {
		return nil, capacity.Catalog{}, err
	}
	catalog, err := reader.System()
	if err != nil {
		return nil, capacity.Catalog{}, fmt.Errorf("system: %w", err)
	}
	full, err := total.Reindex(catalog)
	if err != nil {
		return nil, capacity.Catalog{}, err
	}
	return full, catalog, nil
}

// merge adds the carried over capacities to the existing capacity tables of
// the operation-only dataset. Technologies without additions are left untouched.
func (r *run) merge(ctx context.Context, additions *capacity.Frame, catalog capacity.Catalog) error {
	seen := make(map[string]bool)
	for _, cat := range catalog.Categories() {
		for _, tech := range cat.Technologies {
			if seen[tech] {
				continue
			}
			seen[tech] = true
			for _, kind := range capacity.Kinds {
				if err := ctx.Err(); err != nil {
					return err
				}
				added := additions.Slice(tech, kind)
				if len(added) == 0 {
					r.rep.Skipped++
					continue
				}
				path := capacity.TablePath(r.rep.DatasetOp, cat.Name, tech, kind)
				existing, err := capacity.ReadTable(path, kind)
				if err != nil {
					return fmt.Errorf("%s %s: %w", tech, kind, err)
				}
				merged := capacity.Merge(existing, added)
				if err := capacity.WriteTable(path, kind, merged); err != nil {
					return fmt.Errorf("%s %s: %w", tech, kind, err)
				}
				r.recordTable(TableUpdate{
					Category: cat.Name, Technology: tech, Kind: kind,
					Path: path, Added: len(added), Rows: len(merged),
				})
			}
		}
	}
	return nil
}

func (r *run) recordTable(u TableUpdate) {
	r.rep.Updated = append(r.rep.Updated, u)
	r.p.log.Debugw("capacity table updated", map[string]any{
		"technology": u.Technology, "kind": u.Kind.String(), "added": u.Added, "rows": u.Rows,
	})
	ev := events.TableEvent{
		RunID: r.rep.RunID, Category: u.Category, Technology: u.Technology,
		Kind: u.Kind.String(), Path: u.Path, Added: u.Added, Rows: u.Rows, Time: r.p.now(),
	}
	if err := r.p.sink.RecordTable(ev); err != nil {
		r.p.log.Warnf("record table metrics: %v", err)
	}
}

// step runs fn and reports its start and outcome to the bus, metrics and run log.
func (r *run) step(ctx context.Context, s events.Step, fn func() error) error {
	start := r.p.now()
	r.emit(ctx, events.StepEvent{Step: s, Status: events.StatusStarted, Time: start})
	err := fn()
	end := r.p.now()
	d := end.Sub(start)
	r.rep.Durations[s] = d
	ev := events.StepEvent{Step: s, Status: events.StatusSucceeded, Duration: d, Time: end}
	if err != nil {
		ev.Status = events.StatusFailed
		ev.Err = err
		r.p.log.Errorf("step %s failed after %s: %v", s, d, err)
	} else {
		r.p.log.Infof("step %s done in %s", s, d)
	}
	r.emit(ctx, ev)
	return err
}

func (r *run) emit(ctx context.Context, ev events.StepEvent) {
	ev.RunID = r.rep.RunID
	ev.Dataset = r.rep.Dataset
	if r.p.bus != nil {
		r.p.bus.Publish(ev)
	}
	if err := r.p.sink.RecordStep(ev); err != nil {
		r.p.log.Warnf("record step metrics: %v", err)
	}
	rec := runlog.Record{
		Timestamp:  ev.Time,
		RunID:      ev.RunID,
		Dataset:    r.rep.Dataset,
		DatasetOp:  r.rep.DatasetOp,
		JobIndex:   r.opts.JobIndex,
		JobIndexOp: r.opts.JobIndexOp,
		Step:       string(ev.Step),
		Status:     string(ev.Status),
		DurationMS: ev.Duration.Milliseconds(),
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	if ev.Step == events.StepMerge && ev.Status == events.StatusSucceeded {
		for _, u := range r.rep.Updated {
			rec.Tables = append(rec.Tables, u.Path)
		}
	}
	if err := r.p.store.Append(ctx, rec); err != nil {
		r.p.log.Warnf("append run log: %v", err)
	}
}
