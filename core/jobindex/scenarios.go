package jobindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultScenariosFile is the scenarios file looked up inside a dataset when none is given.
const DefaultScenariosFile = "scenarios.json"

// ScenariosPath locates the scenarios file. A relative path is taken inside
// the dataset, an absolute one is used as is.
func ScenariosPath(dataset, scenariosFile string) string {
	if scenariosFile == "" {
		scenariosFile = DefaultScenariosFile
	}
	if filepath.IsAbs(scenariosFile) {
		return scenariosFile
	}
	return filepath.Join(dataset, scenariosFile)
}

// CountOperationalScenarios returns the number of entries in the scenarios
// file plus one for the implicit base operational scenario.
func CountOperationalScenarios(dataset, scenariosFile string) (int, error) {
	path := ScenariosPath(dataset, scenariosFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s: %w", ErrScenariosNotFound, path, err)
		}
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrScenariosParse, path, err)
	}
	switch v := doc.(type) {
	case []any:
		return len(v) + 1, nil
	case map[string]any:
		return len(v) + 1, nil
	default:
		return 0, fmt.Errorf("%w: %s: expected array or object, got %T", ErrScenariosParse, path, doc)
	}
}
