// Package engine defines how the optimization engine is invoked.
package engine

import (
	"context"
	"path/filepath"
)

// Run describes one invocation of the optimization engine.
type Run struct {
	Dataset      string
	Config       string
	FolderOutput string
	JobIndex     []int
	JobIndexOp   []int
	ScenariosOp  string
	// OperationOnly fixes capacities to the dataset inputs instead of optimizing them.
	OperationOnly bool
}

// Engine runs the optimization to completion.
type Engine interface {
	Run(ctx context.Context, r Run) error
}

// Func adapts a function to Engine.
type Func func(ctx context.Context, r Run) error

func (f Func) Run(ctx context.Context, r Run) error { return f(ctx, r) }

// OutputDir is where the engine writes the results of dataset. An empty
// folderOutput means the outputs folder next to the dataset.
func OutputDir(dataset, folderOutput string) string {
	clean := filepath.Clean(dataset)
	if folderOutput == "" {
		folderOutput = filepath.Join(filepath.Dir(clean), "outputs")
	}
	return filepath.Join(folderOutput, filepath.Base(clean))
}
