package table

import (
	"fmt"
	"time"

	"datalens/domain/core"
)

// NumericColumn builds numeric column data; NaN marks a missing cell.
func NumericColumn(name string, vals ...float64) ColumnData {
	out := make([]Value, len(vals))
	for i, f := range vals {
		out[i] = Float(f)
	}
	return ColumnData{Name: name, Kind: KindNumeric, Values: out}
}

// TextColumn builds categorical column data; "" marks a missing cell.
func TextColumn(name string, vals ...string) ColumnData {
	out := make([]Value, len(vals))
	for i, s := range vals {
		out[i] = Text(s)
	}
	return ColumnData{Name: name, Kind: KindCategorical, Values: out}
}

// TimeColumn builds datetime column data; the zero time marks a missing cell.
func TimeColumn(name string, vals ...time.Time) ColumnData {
	out := make([]Value, len(vals))
	for i, t := range vals {
		out[i] = Time(t)
	}
	return ColumnData{Name: name, Kind: KindDatetime, Values: out}
}

// BoolColumn builds boolean column data.
func BoolColumn(name string, vals ...bool) ColumnData {
	out := make([]Value, len(vals))
	for i, b := range vals {
		out[i] = Bool(b)
	}
	return ColumnData{Name: name, Kind: KindBoolean, Values: out}
}

// Builder accumulates rows for a fixed set of columns.
type Builder struct {
	specs []ColumnSpec
	rows  [][]Value
}

// NewBuilder creates a builder for the given columns
func NewBuilder(specs ...ColumnSpec) *Builder {
	return &Builder{specs: specs}
}

// Append adds one row.
func (b *Builder) Append(vals ...Value) error {
	if len(vals) != len(b.specs) {
		return fmt.Errorf("%w: row has %d values, expected %d", core.ErrInvalidTable, len(vals), len(b.specs))
	}
	row := make([]Value, len(vals))
	copy(row, vals)
	b.rows = append(b.rows, row)
	return nil
}

// Build validates and returns the table.
func (b *Builder) Build() (*Table, error) {
	return New(b.specs, b.rows)
}
