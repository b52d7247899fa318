// Package export writes carryover run reports for downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zen-garden/zenop/core/carryover"
)

type tableJSON struct {
	Category   string `json:"category"`
	Technology string `json:"technology"`
	Kind       string `json:"kind"`
	Path       string `json:"path"`
	Added      int    `json:"rows_added"`
	Rows       int    `json:"rows"`
}

type reportJSON struct {
	RunID     string             `json:"run_id"`
	Dataset   string             `json:"dataset"`
	DatasetOp string             `json:"dataset_op"`
	Retained  bool               `json:"retained"`
	Skipped   int                `json:"skipped"`
	Durations map[string]float64 `json:"durations_seconds"`
	Updated   []tableJSON        `json:"updated"`
}

// WriteJSON writes the run report to w in JSON format.
func WriteJSON(w io.Writer, rep *carryover.Report) error {
	out := reportJSON{
		RunID:     rep.RunID,
		Dataset:   rep.Dataset,
		DatasetOp: rep.DatasetOp,
		Retained:  rep.Retained,
		Skipped:   rep.Skipped,
		Durations: make(map[string]float64, len(rep.Durations)),
		Updated:   make([]tableJSON, 0, len(rep.Updated)),
	}
	for s, d := range rep.Durations {
		out.Durations[string(s)] = d.Seconds()
	}
	for _, u := range rep.Updated {
		out.Updated = append(out.Updated, tableJSON{
			Category:   u.Category,
			Technology: u.Technology,
			Kind:       u.Kind.String(),
			Path:       u.Path,
			Added:      u.Added,
			Rows:       u.Rows,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes one line per updated capacity table.
func WriteCSV(w io.Writer, rep *carryover.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "category", "technology", "kind", "path", "rows_added", "rows"}); err != nil {
		return err
	}
	for _, u := range rep.Updated {
		rec := []string{
			rep.RunID,
			u.Category,
			u.Technology,
			u.Kind.String(),
			u.Path,
			strconv.Itoa(u.Added),
			strconv.Itoa(u.Rows),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, as CSV when the extension is .csv and
// as JSON otherwise.
func WriteFile(path string, rep *carryover.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return WriteCSV(f, rep)
	}
	return WriteJSON(f, rep)
}
