package events

import "time"

// Step identifies a stage of the capacity carryover pipeline.
type Step string

const (
	StepDuplicate    Step = "duplicate"
	StepBaseRun      Step = "base_run"
	StepLoadResults  Step = "load_results"
	StepReindex      Step = "reindex"
	StepMerge        Step = "merge"
	StepOperationRun Step = "operation_run"
	StepCleanup      Step = "cleanup"
)

// Status is the outcome reported for a step.
type Status string

const (
	StatusStarted   Status = "started"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StepEvent is published whenever a step changes status.
type StepEvent struct {
	RunID    string
	Dataset  string
	Step     Step
	Status   Status
	Duration time.Duration
	Err      error
	Time     time.Time
}
