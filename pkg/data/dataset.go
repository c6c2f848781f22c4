// Package data holds the in-memory tabular dataset model and the sources that
// load it.
package data

import (
	"math"

	"github.com/pkg/errors"
)

// Kind is the semantic type of a column, fixed when the column is built.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "float64"
	case Categorical:
		return "object"
	}
	return "unknown"
}

// Column is a named sequence of values of a single kind. Numeric columns mark
// missing entries with NaN; categorical columns mark them in Missing.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Values  []string
	Missing []bool
}

// NumericColumn builds a numeric column. NaN entries are missing.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Numbers: values}
}

// CategoricalColumn builds a categorical column. Entries equal to one of the
// recognised missing markers (see IsMissing) are flagged as missing.
func CategoricalColumn(name string, values []string) Column {
	missing := make([]bool, len(values))
	for i, v := range values {
		missing[i] = IsMissing(v)
	}
	return Column{Name: name, Kind: Categorical, Values: values, Missing: missing}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Numbers)
	}
	return len(c.Values)
}

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Numbers[i])
	}
	return c.Missing[i]
}

// NullCount returns the number of missing rows.
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// Dataset is an ordered set of equally long columns.
type Dataset struct {
	Name    string
	Columns []Column
}

// New validates that column names are unique and that all columns have the same
// length.
func New(name string, cols ...Column) (*Dataset, error) {
	seen := make(map[string]struct{}, len(cols))
	for i := range cols {
		if _, dup := seen[cols[i].Name]; dup {
			return nil, errors.Wrapf(ErrMalformedDataset, "duplicate column %q", cols[i].Name)
		}
		seen[cols[i].Name] = struct{}{}
		if cols[i].Len() != cols[0].Len() {
			return nil, errors.Wrapf(ErrMalformedDataset, "column %q has %d rows, want %d",
				cols[i].Name, cols[i].Len(), cols[0].Len())
		}
	}
	return &Dataset{Name: name, Columns: cols}, nil
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// Without returns the dataset's columns other than the named one, in order.
func (d *Dataset) Without(name string) []Column {
	out := make([]Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}
