// Package results reads the exported results of an engine run from disk.
//
// An output directory contains:
//
//	system.json        technology and node sets of the energy system
//	components.json    component names per category, e.g. {"variable": [...]}
//	totals/<name>.csv  technology,capacity_type,location,<year>... (wide)
//
// The engine command writes this export after solving. For ZEN-garden it is a
// post-processing step over its Results API run by the engine wrapper:
// system.json from Results.get_system(), components.json from
// Results.get_component_names(category) for "variable", and
// totals/capacity_addition.csv from Results.get_total("capacity_addition")
// with the index reset into columns.
package results

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zen-garden/zenop/core/capacity"
	coreresults "github.com/zen-garden/zenop/core/results"
)

// DirReader implements results.Reader over an output directory.
type DirReader struct {
	dir        string
	components map[string][]string
}

// Open opens the results in dir. It fails if dir does not exist.
func Open(dir string) (coreresults.Reader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open results: %s is not a directory", dir)
	}
	return &DirReader{dir: dir}, nil
}

var _ coreresults.Opener = Open

func (r *DirReader) ComponentNames(category string) ([]string, error) {
	if r.components == nil {
		comps := make(map[string][]string)
		if err := readJSON(filepath.Join(r.dir, "components.json"), &comps); err != nil {
			return nil, err
		}
		r.components = comps
	}
	return r.components[category], nil
}

func (r *DirReader) System() (capacity.Catalog, error) {
	var c capacity.Catalog
	if err := readJSON(filepath.Join(r.dir, "system.json"), &c); err != nil {
		return capacity.Catalog{}, err
	}
	return c, nil
}

func (r *DirReader) Total(name string) (*capacity.Frame, error) {
	path := filepath.Join(r.dir, "totals", name+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", coreresults.ErrComponentNotFound, name)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()
	frame, err := DecodeTotal(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frame, nil
}

var totalIndex = []string{"technology", "capacity_type", "location"}

// DecodeTotal parses a wide total table. Empty cells are missing values.
func DecodeTotal(rd io.Reader) (*capacity.Frame, error) {
	cr := csv.NewReader(rd)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(totalIndex) {
		return nil, fmt.Errorf("%w: header %v", capacity.ErrSchema, header)
	}
	for i, name := range totalIndex {
		if strings.TrimSpace(header[i]) != name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", capacity.ErrSchema, i, header[i], name)
		}
	}
	years := make([]int, 0, len(header)-len(totalIndex))
	for _, h := range header[len(totalIndex):] {
		y, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("%w: year column %q", capacity.ErrSchema, h)
		}
		years = append(years, y)
	}
	frame := capacity.NewFrame(years)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return frame, nil
		}
		if err != nil {
			return nil, err
		}
		kind, err := capacity.ParseKind(rec[1])
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(years))
		for i, cell := range rec[len(totalIndex):] {
			values[i], err = parseCell(cell)
			if err != nil {
				return nil, err
			}
		}
		key := capacity.Key{Technology: rec[0], Kind: kind, Node: rec[2]}
		if err := frame.Add(key, values); err != nil {
			return nil, err
		}
	}
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q", capacity.ErrSchema, s)
	}
	return v, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
