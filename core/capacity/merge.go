package capacity

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

type cell struct {
	node string
	year int
}

// Merge concatenates existing and added rows and sums values per
// (node, year_construction). The result has one row per pair, sorted by node
// and year.
func Merge(existing, added []Row) []Row {
	groups := make(map[cell][]float64)
	var order []cell
	for _, rows := range [][]Row{existing, added} {
		for _, r := range rows {
			k := cell{node: r.Node, year: r.Year}
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], r.Value)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].node != order[j].node {
			return order[i].node < order[j].node
		}
		return order[i].year < order[j].year
	})
	out := make([]Row, 0, len(order))
	for _, k := range order {
		out = append(out, Row{Node: k.node, Year: k.year, Value: floats.Sum(groups[k])})
	}
	return out
}
