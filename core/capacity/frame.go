package capacity

import (
	"fmt"
	"math"
	"sort"
)

// FrameRow holds the values of one key, aligned with Frame.Years.
type FrameRow struct {
	Key    Key
	Values []float64
}

// Frame is a wide capacity table: one row per key, one column per year.
// Missing cells are NaN.
type Frame struct {
	Years []int
	Rows  []FrameRow
}

// NewFrame returns an empty frame with the given year columns.
func NewFrame(years []int) *Frame {
	return &Frame{Years: append([]int(nil), years...)}
}

// Add appends a row. values must have one entry per year column.
func (f *Frame) Add(key Key, values []float64) error {
	if len(values) != len(f.Years) {
		return fmt.Errorf("%w: %v has %d values for %d years", ErrSchema, key, len(values), len(f.Years))
	}
	f.Rows = append(f.Rows, FrameRow{Key: key, Values: append([]float64(nil), values...)})
	return nil
}

// Reindex returns a frame covering every technology x kind x node of the
// catalog. Values of matching keys are copied unchanged; keys outside the
// product are dropped and new keys are filled with NaN.
func (f *Frame) Reindex(c Catalog) (*Frame, error) {
	src := make(map[Key][]float64, len(f.Rows))
	for _, r := range f.Rows {
		if _, dup := src[r.Key]; dup {
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrDuplicateKey, r.Key.Technology, r.Key.Kind, r.Key.Node)
		}
		src[r.Key] = r.Values
	}
	techs := c.Technologies()
	out := &Frame{
		Years: append([]int(nil), f.Years...),
		Rows:  make([]FrameRow, 0, len(techs)*len(Kinds)*len(c.Nodes)),
	}
	for _, tech := range techs {
		for _, kind := range Kinds {
			for _, node := range c.Nodes {
				key := Key{Technology: tech, Kind: kind, Node: node}
				values := make([]float64, len(f.Years))
				if v, ok := src[key]; ok {
					copy(values, v)
				} else {
					for i := range values {
						values[i] = math.NaN()
					}
				}
				out.Rows = append(out.Rows, FrameRow{Key: key, Values: values})
			}
		}
	}
	return out, nil
}

// Slice unpivots the year columns of the (tech, kind) rows into long rows,
// dropping missing cells. Rows keep frame order per node and ascending years.
func (f *Frame) Slice(tech string, kind Kind) []Row {
	cols := make([]int, len(f.Years))
	for i := range cols {
		cols[i] = i
	}
	sort.SliceStable(cols, func(a, b int) bool { return f.Years[cols[a]] < f.Years[cols[b]] })

	var out []Row
	for _, r := range f.Rows {
		if r.Key.Technology != tech || r.Key.Kind != kind {
			continue
		}
		for _, c := range cols {
			v := r.Values[c]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, Row{Node: r.Key.Node, Year: f.Years[c], Value: v})
		}
	}
	return out
}
