package capacity

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func testCatalog() Catalog {
	return Catalog{
		Conversion: []string{"A"},
		Storage:    []string{"B"},
		Nodes:      []string{"X", "Y"},
	}
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "capacity_existing.csv", Power.FileName())
	assert.Equal(t, "capacity_existing_energy.csv", Energy.FileName())
	assert.Equal(t, "capacity_existing_energy", Energy.Column())
	k, err := ParseKind("energy")
	require.NoError(t, err)
	assert.Equal(t, Energy, k)
	_, err = ParseKind("heat")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCatalogTechnologies(t *testing.T) {
	c := Catalog{Conversion: []string{"pv", "boiler"}, Transport: []string{"line"}, Storage: []string{"battery", "pv"}}
	assert.Equal(t, []string{"pv", "boiler", "line", "battery"}, c.Technologies())
	cats := c.Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, TransportCategory, cats[1].Name)
}

func TestReindexFullProduct(t *testing.T) {
	f := NewFrame([]int{0, 1})
	require.NoError(t, f.Add(Key{"A", Power, "X"}, []float64{4, nan}))
	require.NoError(t, f.Add(Key{"A", Energy, "Y"}, []float64{1.5, 2}))
	require.NoError(t, f.Add(Key{"Z", Power, "X"}, []float64{9, 9}))

	out, err := f.Reindex(testCatalog())
	require.NoError(t, err)
	require.Len(t, out.Rows, 2*2*2)

	seen := make(map[Key]bool)
	for _, r := range out.Rows {
		assert.False(t, seen[r.Key], "duplicate %v", r.Key)
		seen[r.Key] = true
	}
	assert.Equal(t, []Row{{Node: "X", Year: 0, Value: 4}}, out.Slice("A", Power))
	assert.Equal(t, []Row{{Node: "Y", Year: 0, Value: 1.5}, {Node: "Y", Year: 1, Value: 2}}, out.Slice("A", Energy))
	assert.Empty(t, out.Slice("B", Power))
	assert.False(t, seen[Key{"Z", Power, "X"}])
}

func TestReindexDuplicateKey(t *testing.T) {
	f := NewFrame([]int{0})
	require.NoError(t, f.Add(Key{"A", Power, "X"}, []float64{1}))
	require.NoError(t, f.Add(Key{"A", Power, "X"}, []float64{2}))
	_, err := f.Reindex(testCatalog())
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestAddLengthMismatch(t *testing.T) {
	f := NewFrame([]int{0, 1})
	assert.ErrorIs(t, f.Add(Key{"A", Power, "X"}, []float64{1}), ErrSchema)
}

func TestSliceDropsMissing(t *testing.T) {
	f := NewFrame([]int{2030, 2025})
	require.NoError(t, f.Add(Key{"A", Power, "X"}, []float64{3, 4}))
	require.NoError(t, f.Add(Key{"A", Power, "Y"}, []float64{nan, nan}))
	require.NoError(t, f.Add(Key{"A", Energy, "X"}, []float64{7, nan}))
	out, err := f.Reindex(testCatalog())
	require.NoError(t, err)

	assert.Equal(t, []Row{{"X", 2025, 4}, {"X", 2030, 3}}, out.Slice("A", Power))
	assert.Equal(t, []Row{{"X", 2030, 7}}, out.Slice("A", Energy))
	assert.Empty(t, out.Slice("B", Power))
}

func TestMergeSumsPerNodeYear(t *testing.T) {
	existing := []Row{{"n1", 1, 10}}
	added := []Row{{"n1", 1, 5}, {"n2", 2, 3}}
	assert.Equal(t, []Row{{"n1", 1, 15}, {"n2", 2, 3}}, Merge(existing, added))
}

func TestMergeCollapsesDuplicates(t *testing.T) {
	existing := []Row{{"b", 2020, 1}, {"a", 2020, 2}, {"b", 2020, 1}}
	out := Merge(existing, nil)
	assert.Equal(t, []Row{{"a", 2020, 2}, {"b", 2020, 2}}, out)
}

func TestMergeEmptyAdditionKeepsTable(t *testing.T) {
	existing := []Row{{"X", 2020, 1.25}, {"Y", 2021, 3}}
	assert.Equal(t, existing, Merge(existing, nil))
}

func TestTableRoundTripOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Energy.FileName())
	body := "node,year_construction,capacity_existing_energy\nX,2020,1.5\nY,2021.0,2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o640))

	rows, err := ReadTable(path, Energy)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"X", 2020, 1.5}, {"Y", 2021, 2}}, rows)

	require.NoError(t, WriteTable(path, Energy, Merge(rows, []Row{{"X", 2020, 0.5}})))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node,year_construction,capacity_existing_energy\nX,2020,2\nY,2021,2\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDecodeTableSchemaErrors(t *testing.T) {
	cases := []string{
		"",
		"node,year_construction\nX,2020\n",
		"node,year_construction,capacity_existing,extra\nX,2020,1,2\n",
		"node,year_construction,capacity_existing\nX,soon,1\n",
		"node,year_construction,capacity_existing\nX,2020,lots\n",
	}
	for _, c := range cases {
		_, err := DecodeTable(strings.NewReader(c), Power)
		assert.ErrorIs(t, err, ErrSchema, c)
	}
}

func TestReadTableMissing(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"), Power)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeTableHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeTable(&buf, Power, nil))
	assert.Equal(t, "node,year_construction,capacity_existing\n", buf.String())
}

func TestTablePath(t *testing.T) {
	got := TablePath("/data/d_op", StorageCategory, "battery", Energy)
	assert.Equal(t, filepath.Join("/data/d_op", "set_technologies", StorageCategory, "battery", "capacity_existing_energy.csv"), got)
}
