package jobindex

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvVar is the batch-array variable consulted when no explicit index is given.
const DefaultEnvVar = "SLURM_ARRAY_TASK_ID"

// Indices is a list of scenario indices. A nil list means "not specified".
type Indices []int

// Request holds everything Resolve needs. The environment value is looked up
// by the caller so that resolution does not depend on process state.
type Request struct {
	JobIndex    string
	JobIndexOp  string
	EnvValue    string
	EnvSet      bool
	Dataset     string
	ScenariosOp string
	// BaseCount is the number of base scenarios. Zero disables the range check.
	BaseCount int
}

// Result is the pair of resolved index lists.
type Result struct {
	JobIndex   Indices `json:"job_index"`
	JobIndexOp Indices `json:"job_index_op"`
}

// ParseIndexList parses a comma separated list of non-negative integers.
// Empty input yields nil.
func ParseIndexList(text string) (Indices, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	out := make(Indices, 0, len(parts))
	for _, p := range parts {
		n, err := parseIndex(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrParseIndex, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrParseIndex, n)
	}
	return n, nil
}

// Resolve computes the base and operational indices for the current worker.
// Explicit indices win as a pair: if either is set the flat index is ignored.
func Resolve(req Request) (Result, error) {
	jobIndex, err := ParseIndexList(req.JobIndex)
	if err != nil {
		return Result{}, fmt.Errorf("job_index: %w", err)
	}
	jobIndexOp, err := ParseIndexList(req.JobIndexOp)
	if err != nil {
		return Result{}, fmt.Errorf("job_index_op: %w", err)
	}
	if jobIndex != nil || jobIndexOp != nil || !req.EnvSet {
		return Result{JobIndex: jobIndex, JobIndexOp: jobIndexOp}, nil
	}

	flat, err := parseIndex(req.EnvValue)
	if err != nil {
		return Result{}, fmt.Errorf("flat job index: %w", err)
	}
	opCount, err := CountOperationalScenarios(req.Dataset, req.ScenariosOp)
	if err != nil {
		return Result{}, err
	}
	base, op := Split(flat, opCount)
	if req.BaseCount > 0 && base >= req.BaseCount {
		return Result{}, &RangeError{Flat: flat, BaseIndex: base, BaseCount: req.BaseCount, OpCount: opCount}
	}
	return Result{JobIndex: Indices{base}, JobIndexOp: Indices{op}}, nil
}

// Split maps a flat index onto the (base, operational) grid.
func Split(flat, opCount int) (base, op int) {
	return flat / opCount, flat % opCount
}

// Flat is the inverse of Split.
func Flat(base, op, opCount int) int {
	return base*opCount + op
}

// LookupEnv reads the batch-array variable from the process environment.
func LookupEnv(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	return os.LookupEnv(name)
}
