package domain

import (
	"fmt"
	"math"
	"time"
)

// NA marks a missing value in a float column.
func NA() float64 { return math.NaN() }

// IsNA reports whether v is the missing-value marker.
func IsNA(v float64) bool { return math.IsNaN(v) }

// ColumnKind distinguishes numeric columns from datetime columns.
type ColumnKind int

const (
	FloatColumn ColumnKind = iota
	DatetimeColumn
)

// Column is a single named column of a Table. Exactly one of Floats or
// Times is populated, according to Kind.
type Column struct {
	Name   string
	Kind   ColumnKind
	Floats []float64
	Times  []time.Time
}

func (c *Column) len() int {
	if c.Kind == DatetimeColumn {
		return len(c.Times)
	}
	return len(c.Floats)
}

// Table is an ordered collection of named columns with an optional datetime
// row index. It stands in for the caller's tabular container: rows need not
// be sorted and dates may live either in the index or in a column.
type Table struct {
	cols  []Column
	index []time.Time
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t.index != nil {
		return len(t.index)
	}
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].len()
}

// AddFloatColumn appends a numeric column. Use NA() for missing values.
func (t *Table) AddFloatColumn(name string, values []float64) error {
	if err := t.checkLen(name, len(values)); err != nil {
		return err
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	t.cols = append(t.cols, Column{Name: name, Kind: FloatColumn, Floats: vals})
	return nil
}

// AddTimeColumn appends a datetime column.
func (t *Table) AddTimeColumn(name string, values []time.Time) error {
	if err := t.checkLen(name, len(values)); err != nil {
		return err
	}
	vals := make([]time.Time, len(values))
	copy(vals, values)
	t.cols = append(t.cols, Column{Name: name, Kind: DatetimeColumn, Times: vals})
	return nil
}

func (t *Table) checkLen(name string, n int) error {
	if len(t.cols) > 0 && n != t.cols[0].len() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, n, t.cols[0].len())
	}
	if t.index != nil && n != len(t.index) {
		return fmt.Errorf("column %q has %d values, index has %d rows", name, n, len(t.index))
	}
	return nil
}

// SetIndex assigns a datetime row index.
func (t *Table) SetIndex(dates []time.Time) error {
	if len(t.cols) > 0 && len(dates) != t.cols[0].len() {
		return fmt.Errorf("index has %d values, table has %d rows", len(dates), t.cols[0].len())
	}
	idx := make([]time.Time, len(dates))
	copy(idx, dates)
	t.index = idx
	return nil
}

// HasDateIndex reports whether the table carries a datetime row index.
func (t *Table) HasDateIndex() bool { return t.index != nil }

// Index returns the datetime row index, or nil if none is set.
func (t *Table) Index() []time.Time { return t.index }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i := range t.cols {
		names[i] = t.cols[i].Name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.cols {
		if t.cols[i].Name == name {
			return &t.cols[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Copy returns a deep copy of the table. The builder copies its input so the
// caller's table is never mutated.
func (t *Table) Copy() *Table {
	cp := &Table{}
	if t.index != nil {
		cp.index = make([]time.Time, len(t.index))
		copy(cp.index, t.index)
	}
	cp.cols = make([]Column, len(t.cols))
	for i := range t.cols {
		c := t.cols[i]
		nc := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == DatetimeColumn {
			nc.Times = make([]time.Time, len(c.Times))
			copy(nc.Times, c.Times)
		} else {
			nc.Floats = make([]float64, len(c.Floats))
			copy(nc.Floats, c.Floats)
		}
		cp.cols[i] = nc
	}
	return cp
}

// rename appends a copy of src under the name dst and removes src, matching
// the create-then-drop rename the builder performs for mapped columns.
func (t *Table) rename(src, dst string) {
	c, ok := t.Column(src)
	if !ok {
		return
	}
	nc := Column{Name: dst, Kind: c.Kind}
	if c.Kind == DatetimeColumn {
		nc.Times = append([]time.Time(nil), c.Times...)
	} else {
		nc.Floats = append([]float64(nil), c.Floats...)
	}
	t.removeColumn(src)
	t.cols = append(t.cols, nc)
}

func (t *Table) removeColumn(name string) {
	for i := range t.cols {
		if t.cols[i].Name == name {
			t.cols = append(t.cols[:i], t.cols[i+1:]...)
			return
		}
	}
}

// TruncateBefore drops, in place, every row whose index date is before
// cutoff. The table must carry a date index. Repeated calls with different
// cutoffs compound.
func (t *Table) TruncateBefore(cutoff time.Time) {
	if t.index == nil {
		return
	}
	keep := make([]int, 0, len(t.index))
	for i, d := range t.index {
		if !d.Before(cutoff) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.index) {
		return
	}
	idx := make([]time.Time, len(keep))
	for j, i := range keep {
		idx[j] = t.index[i]
	}
	t.index = idx
	for ci := range t.cols {
		c := &t.cols[ci]
		if c.Kind == DatetimeColumn {
			vals := make([]time.Time, len(keep))
			for j, i := range keep {
				vals[j] = c.Times[i]
			}
			c.Times = vals
			continue
		}
		vals := make([]float64, len(keep))
		for j, i := range keep {
			vals[j] = c.Floats[i]
		}
		c.Floats = vals
	}
}

// DateSourceKind tags where the row dates were found.
type DateSourceKind int

const (
	// DateFromIndex means the table's row index is already datetime-typed.
	DateFromIndex DateSourceKind = iota
	// DateFromColumn means a datetime column supplies the dates.
	DateFromColumn
)

// DateSource is the result of date resolution: either the existing index or
// a named datetime column to be promoted to the index.
type DateSource struct {
	Kind   DateSourceKind
	Column string
}

// ResolveDateSource determines where row dates come from. The index wins if
// it is datetime-typed; otherwise the first datetime column in table order
// is chosen. With neither, a MissingDateColumnError is returned.
func (t *Table) ResolveDateSource() (DateSource, error) {
	if t.HasDateIndex() {
		return DateSource{Kind: DateFromIndex}, nil
	}
	for i := range t.cols {
		if t.cols[i].Kind == DatetimeColumn {
			return DateSource{Kind: DateFromColumn, Column: t.cols[i].Name}, nil
		}
	}
	return DateSource{}, &MissingDateColumnError{}
}

// PromoteDateColumn moves the named datetime column into the row index and
// removes it from the column set.
func (t *Table) PromoteDateColumn(name string) error {
	c, ok := t.Column(name)
	if !ok || c.Kind != DatetimeColumn {
		return fmt.Errorf("column %q is not a datetime column", name)
	}
	idx := make([]time.Time, len(c.Times))
	copy(idx, c.Times)
	t.index = idx
	t.removeColumn(name)
	return nil
}
