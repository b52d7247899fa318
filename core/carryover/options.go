package carryover

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zen-garden/zenop/core/capacity"
	"github.com/zen-garden/zenop/core/events"
)

// CapacityAddition is the result variable carried into the operation-only run.
const CapacityAddition = "capacity_addition"

// OperationSuffix names the default operation-only dataset next to the original.
const OperationSuffix = "_operation"

var (
	// ErrMissingCapacityAddition is returned when the base run reported no capacity_addition variable.
	ErrMissingCapacityAddition = errors.New("results have no variable named capacity_addition")
	// ErrNoDataset is returned when Options.Dataset is empty.
	ErrNoDataset = errors.New("dataset is required")
	// ErrSameDataset is returned when the operation-only dataset would overwrite the original.
	ErrSameDataset = errors.New("operation-only dataset must differ from the dataset")
)

// Options configures one carryover run.
type Options struct {
	Dataset string
	Config  string
	// ConfigOp is the config of the operation-only run. Empty means Config.
	ConfigOp string
	// DatasetOp is the operation-only dataset: a sibling name or a path.
	// Empty means the dataset name with OperationSuffix.
	DatasetOp    string
	FolderOutput string
	JobIndex     []int
	JobIndexOp   []int
	ScenariosOp  string
	// DeleteData removes the operation-only dataset when the run ends.
	DeleteData bool
}

// OperationDataset returns the path of the operation-only copy of dataset.
func OperationDataset(dataset, datasetOp string) (string, error) {
	if dataset == "" {
		return "", ErrNoDataset
	}
	clean := filepath.Clean(dataset)
	var out string
	switch {
	case datasetOp == "":
		out = filepath.Join(filepath.Dir(clean), filepath.Base(clean)+OperationSuffix)
	case !strings.ContainsRune(datasetOp, filepath.Separator) && !strings.Contains(datasetOp, "/"):
		out = filepath.Join(filepath.Dir(clean), datasetOp)
	default:
		out = filepath.Clean(datasetOp)
	}
	a, errA := filepath.Abs(clean)
	b, errB := filepath.Abs(out)
	if errA == nil && errB == nil && (a == b || strings.HasPrefix(b, a+string(filepath.Separator))) {
		return "", fmt.Errorf("%w: %s", ErrSameDataset, out)
	}
	return out, nil
}

// TableUpdate describes one existing capacity table rewritten by the merge step.
type TableUpdate struct {
	Category   string
	Technology string
	Kind       capacity.Kind
	Path       string
	Added      int
	Rows       int
}

// Report summarizes a carryover run.
type Report struct {
	RunID     string
	Dataset   string
	DatasetOp string
	Updated   []TableUpdate
	// Skipped counts technology/kind pairs without any capacity addition.
	Skipped   int
	Durations map[events.Step]time.Duration
	// Retained is true when the operation-only dataset was left on disk.
	Retained bool
}
