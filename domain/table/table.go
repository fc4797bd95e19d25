package table

import (
	"fmt"

	"datalens/domain/core"
)

// ColumnSpec names a column and its declared kind.
type ColumnSpec struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Column is a read-only, column-major view of one table column.
type Column struct {
	spec    ColumnSpec
	values  []Value
	present int
}

// Name returns the column name
func (c *Column) Name() string { return c.spec.Name }

// Kind returns the declared column kind
func (c *Column) Kind() Kind { return c.spec.Kind }

// Spec returns the column spec
func (c *Column) Spec() ColumnSpec { return c.spec }

// Len returns the number of rows, including missing cells.
func (c *Column) Len() int { return len(c.values) }

// At returns the value in row i.
func (c *Column) At(i int) Value { return c.values[i] }

// PresentCount returns the number of non-missing cells.
func (c *Column) PresentCount() int { return c.present }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int { return len(c.values) - c.present }

// IsEmpty reports whether every cell is missing.
func (c *Column) IsEmpty() bool { return c.present == 0 }

// Floats returns the non-missing numeric values in row order. The slice is a
// fresh copy that the caller may sort or modify.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, c.present)
	for _, v := range c.values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Table is an immutable rectangular dataset. Row order is meaningful.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// ColumnData is the input shape for FromColumns.
type ColumnData struct {
	Name   string
	Kind   Kind
	Values []Value
}

// New builds a table from row-major data. Every row must carry one value per
// column and every non-missing value must match its column's kind.
func New(specs []ColumnSpec, rows [][]Value) (*Table, error) {
	cols := make([]ColumnData, len(specs))
	for j, spec := range specs {
		cols[j] = ColumnData{Name: spec.Name, Kind: spec.Kind, Values: make([]Value, 0, len(rows))}
	}
	for i, row := range rows {
		if len(row) != len(specs) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", core.ErrInvalidTable, i, len(row), len(specs))
		}
		for j, v := range row {
			cols[j].Values = append(cols[j].Values, v)
		}
	}
	return FromColumns(cols...)
}

// FromColumns builds a table from column-major data.
func FromColumns(cols ...ColumnData) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}

	for j, cd := range cols {
		if cd.Name == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", core.ErrInvalidTable, j)
		}
		if _, dup := t.index[cd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrInvalidTable, cd.Name)
		}
		switch cd.Kind {
		case KindNumeric, KindCategorical, KindDatetime, KindBoolean:
		default:
			return nil, fmt.Errorf("%w: column %q has unknown kind %q", core.ErrInvalidTable, cd.Name, cd.Kind)
		}
		if j == 0 {
			t.rows = len(cd.Values)
		} else if len(cd.Values) != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", core.ErrInvalidTable, cd.Name, len(cd.Values), t.rows)
		}

		col := &Column{
			spec:   ColumnSpec{Name: cd.Name, Kind: cd.Kind},
			values: make([]Value, len(cd.Values)),
		}
		for i, v := range cd.Values {
			if !v.IsMissing() {
				if v.Kind() != cd.Kind {
					return nil, fmt.Errorf("%w: column %q row %d holds a %s value in a %s column",
						core.ErrInvalidTable, cd.Name, i, v.Kind(), cd.Kind)
				}
				col.present++
			}
			col.values[i] = v
		}

		t.index[cd.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}

	return t, nil
}

// NumRows returns the row count
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count
func (t *Table) NumColumns() int { return len(t.columns) }

// Specs returns the column specs in table order.
func (t *Table) Specs() []ColumnSpec {
	out := make([]ColumnSpec, len(t.columns))
	for j, c := range t.columns {
		out[j] = c.spec
	}
	return out
}

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[j], true
}

// MustColumn looks a column up by name, failing with ErrInvalidColumnReference.
func (t *Table) MustColumn(name string) (*Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, core.NewColumnReferenceError(name)
	}
	return col, nil
}

// Row returns row i as a name→value map.
func (t *Table) Row(i int) map[string]Value {
	row := make(map[string]Value, len(t.columns))
	for _, c := range t.columns {
		row[c.spec.Name] = c.values[i]
	}
	return row
}
