package jobindex

import (
	"errors"
	"fmt"
)

var (
	// ErrParseIndex is returned when an index list or flat index is not a non-negative integer.
	ErrParseIndex = errors.New("invalid job index")
	// ErrScenariosNotFound is returned when the operational scenarios file does not exist.
	ErrScenariosNotFound = errors.New("operational scenarios file not found")
	// ErrScenariosParse is returned when the operational scenarios file is not a JSON collection.
	ErrScenariosParse = errors.New("operational scenarios file is not valid JSON")
	// ErrIndexOutOfRange is returned when a flat index addresses a base scenario past the end.
	ErrIndexOutOfRange = errors.New("job index out of range")
)

// RangeError describes a flat index that does not fit the scenario grid.
type RangeError struct {
	Flat      int
	BaseIndex int
	BaseCount int
	OpCount   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("flat index %d maps to base scenario %d but only %d base x %d operational scenarios exist (max flat index %d)",
		e.Flat, e.BaseIndex, e.BaseCount, e.OpCount, e.BaseCount*e.OpCount-1)
}

func (e *RangeError) Unwrap() error { return ErrIndexOutOfRange }
