package dataset

import (
	"fmt"
	"math"
	"time"

	"goeda/domain/core"
)

// ColumnKind classifies the semantic type of a column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindTemporal    ColumnKind = "temporal"
)

// Column holds one named, typed column of values. Exactly one of the value
// slices is populated, matching Kind. Missing numeric values are NaN, missing
// labels are "", missing timestamps are the zero time.
type Column struct {
	Name   string     `json:"name"`
	Kind   ColumnKind `json:"kind"`
	Floats []float64  `json:"floats,omitempty"`
	Labels []string   `json:"labels,omitempty"`
	Times  []time.Time `json:"times,omitempty"`
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Floats)
	case KindCategorical:
		return len(c.Labels)
	case KindTemporal:
		return len(c.Times)
	}
	return 0
}

// DistinctCount returns the number of distinct non-missing values.
func (c Column) DistinctCount() int {
	switch c.Kind {
	case KindNumeric:
		seen := make(map[float64]struct{})
		for _, v := range c.Floats {
			if !math.IsNaN(v) {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	case KindCategorical:
		seen := make(map[string]struct{})
		for _, v := range c.Labels {
			if v != "" {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	case KindTemporal:
		seen := make(map[time.Time]struct{})
		for _, v := range c.Times {
			if !v.IsZero() {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	}
	return 0
}

// MissingCount returns the number of missing values in the column.
func (c Column) MissingCount() int {
	n := 0
	switch c.Kind {
	case KindNumeric:
		for _, v := range c.Floats {
			if math.IsNaN(v) {
				n++
			}
		}
	case KindCategorical:
		for _, v := range c.Labels {
			if v == "" {
				n++
			}
		}
	case KindTemporal:
		for _, v := range c.Times {
			if v.IsZero() {
				n++
			}
		}
	}
	return n
}

// NonMissingFloats returns the column's numeric values with NaN entries removed.
func (c Column) NonMissingFloats() []float64 {
	out := make([]float64, 0, len(c.Floats))
	for _, v := range c.Floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is an ordered set of uniquely named, equal-length columns.
// The analysis engine never mutates a Dataset it is handed.
type Dataset struct {
	ID      core.DatasetID
	Name    string
	columns []Column
	index   map[string]int
	rows    int
}

// New creates an empty dataset.
func New(name string) *Dataset {
	return &Dataset{
		ID:    core.DatasetID(core.NewID()),
		Name:  name,
		index: make(map[string]int),
	}
}

// AddColumn appends a column, enforcing unique names and a uniform row count.
func (d *Dataset) AddColumn(col Column) error {
	if col.Name == "" {
		return fmt.Errorf("dataset: column name cannot be empty")
	}
	if _, exists := d.index[col.Name]; exists {
		return fmt.Errorf("dataset: duplicate column name %q", col.Name)
	}
	if len(d.columns) > 0 && col.Len() != d.rows {
		return fmt.Errorf("dataset: column %q has %d rows, want %d", col.Name, col.Len(), d.rows)
	}
	if len(d.columns) == 0 {
		d.rows = col.Len()
	}
	d.index[col.Name] = len(d.columns)
	d.columns = append(d.columns, col)
	return nil
}

// Rows returns the row count shared by all columns.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns all columns in insertion order.
func (d *Dataset) Columns() []Column { return d.columns }

// Column looks a column up by name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// HasColumn reports whether a column with the given name exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnNames returns all column names in insertion order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the numeric columns in insertion order.
func (d *Dataset) NumericColumns() []Column { return d.byKind(KindNumeric) }

// CategoricalColumns returns the categorical columns in insertion order.
func (d *Dataset) CategoricalColumns() []Column { return d.byKind(KindCategorical) }

// TemporalColumns returns the temporal columns in insertion order.
func (d *Dataset) TemporalColumns() []Column { return d.byKind(KindTemporal) }

func (d *Dataset) byKind(kind ColumnKind) []Column {
	var out []Column
	for _, c := range d.columns {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// MissingRate returns the overall fraction of missing cells.
func (d *Dataset) MissingRate() float64 {
	if d.rows == 0 || len(d.columns) == 0 {
		return 0
	}
	missing := 0
	for _, c := range d.columns {
		missing += c.MissingCount()
	}
	return float64(missing) / float64(d.rows*len(d.columns))
}
