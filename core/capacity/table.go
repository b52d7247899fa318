package capacity

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	nodeColumn = "node"
	yearColumn = "year_construction"
)

// TablePath is the location of a technology's existing capacity table.
func TablePath(dataset, category, tech string, kind Kind) string {
	return filepath.Join(dataset, "set_technologies", category, tech, kind.FileName())
}

// ReadTable reads an existing capacity table.
func ReadTable(path string, kind Kind) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capacity table: %w", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := DecodeTable(f, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// DecodeTable parses CSV with node, year_construction and the kind's value column.
func DecodeTable(r io.Reader, kind Kind) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}
	if err != nil {
		return nil, err
	}
	idx := map[string]int{nodeColumn: -1, yearColumn: -1, kind.Column(): -1}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		pos, ok := idx[h]
		if !ok {
			return nil, fmt.Errorf("%w: unexpected column %q", ErrSchema, h)
		}
		if pos >= 0 {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchema, h)
		}
		idx[h] = i
	}
	for name, pos := range idx {
		if pos < 0 {
			return nil, fmt.Errorf("%w: missing column %q", ErrSchema, name)
		}
	}

	var out []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		year, err := parseYear(rec[idx[yearColumn]])
		if err != nil {
			return nil, err
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[kind.Column()]]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q", ErrSchema, rec[idx[kind.Column()]])
		}
		out = append(out, Row{Node: rec[idx[nodeColumn]], Year: year, Value: val})
	}
	return out, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: year_construction %q", ErrSchema, s)
	}
	return int(f), nil
}

// EncodeTable writes rows with a header and no index column.
func EncodeTable(w io.Writer, kind Kind, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{nodeColumn, yearColumn, kind.Column()}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Node,
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable overwrites the table at path. The file is replaced atomically.
func WriteTable(path string, kind Kind, rows []Row) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = EncodeTable(tmp, kind, rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, serr := os.Stat(path); serr == nil {
		perm = info.Mode().Perm()
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
