package capacity

import (
	"errors"
	"fmt"
)

// Kind distinguishes power and energy capacities.
type Kind int

const (
	Power Kind = iota
	Energy
)

// Kinds lists the capacity kinds in the order tables are processed.
var Kinds = []Kind{Power, Energy}

func (k Kind) String() string {
	switch k {
	case Power:
		return "power"
	case Energy:
		return "energy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Suffix is appended to table and column names for the kind.
func (k Kind) Suffix() string {
	if k == Energy {
		return "_energy"
	}
	return ""
}

// Column is the value column of the existing capacity table.
func (k Kind) Column() string { return "capacity_existing" + k.Suffix() }

// FileName is the CSV file holding the existing capacity of this kind.
func (k Kind) FileName() string { return k.Column() + ".csv" }

// ParseKind maps the capacity_type label used in results to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "power":
		return Power, nil
	case "energy":
		return Energy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

var (
	// ErrUnknownKind is returned for capacity types other than power and energy.
	ErrUnknownKind = errors.New("unknown capacity type")
	// ErrDuplicateKey is returned when a frame holds the same key twice.
	ErrDuplicateKey = errors.New("duplicate capacity key")
	// ErrSchema is returned when a capacity table has unexpected columns.
	ErrSchema = errors.New("unexpected capacity table schema")
)

// Key addresses one row of a capacity frame.
type Key struct {
	Technology string
	Kind       Kind
	Node       string
}

// Row is one (node, year_construction) entry of a capacity table.
type Row struct {
	Node  string
	Year  int
	Value float64
}

// Category folder names below set_technologies.
const (
	ConversionCategory = "set_conversion_technologies"
	TransportCategory  = "set_transport_technologies"
	StorageCategory    = "set_storage_technologies"
)

// Catalog is the technology and node catalog of an energy system.
type Catalog struct {
	Conversion []string `json:"set_conversion_technologies"`
	Transport  []string `json:"set_transport_technologies"`
	Storage    []string `json:"set_storage_technologies"`
	Nodes      []string `json:"set_nodes"`
}

// Category groups the technologies stored below one folder.
type Category struct {
	Name         string
	Technologies []string
}

// Categories returns conversion, transport and storage technologies in that order.
func (c Catalog) Categories() []Category {
	return []Category{
		{Name: ConversionCategory, Technologies: c.Conversion},
		{Name: TransportCategory, Technologies: c.Transport},
		{Name: StorageCategory, Technologies: c.Storage},
	}
}

// Technologies returns every technology once, in category order.
func (c Catalog) Technologies() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cat := range c.Categories() {
		for _, t := range cat.Technologies {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
