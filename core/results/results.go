// Package results describes the read side of an engine run: which components
// were reported, the total table of a component and the system catalog.
package results

import (
	"errors"

	"github.com/zen-garden/zenop/core/capacity"
)

// CategoryVariable lists the optimization variables of a run.
const CategoryVariable = "variable"

// ErrComponentNotFound is returned when a component has no total table.
var ErrComponentNotFound = errors.New("component not found")

// Reader queries the results of one engine run.
type Reader interface {
	ComponentNames(category string) ([]string, error)
	Total(name string) (*capacity.Frame, error)
	System() (capacity.Catalog, error)
}

// Opener opens the results stored in an output directory.
type Opener func(outputDir string) (Reader, error)

// HasComponent reports whether name is among the components of category.
func HasComponent(r Reader, category, name string) (bool, error) {
	names, err := r.ComponentNames(category)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
