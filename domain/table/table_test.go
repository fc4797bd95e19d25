package table

import (
	"math"
	"testing"
	"time"

	"datalens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromColumns_ValidatesShape(t *testing.T) {
	_, err := FromColumns(
		NumericColumn("a", 1, 2, 3),
		NumericColumn("b", 1, 2),
	)
	assert.ErrorIs(t, err, core.ErrInvalidTable)

	_, err = FromColumns(NumericColumn("a", 1), NumericColumn("a", 2))
	assert.ErrorIs(t, err, core.ErrInvalidTable)

	_, err = FromColumns(ColumnData{Name: "a", Kind: KindNumeric, Values: []Value{Text("x")}})
	assert.ErrorIs(t, err, core.ErrInvalidTable)
}

func TestTable_MissingHandling(t *testing.T) {
	tbl, err := FromColumns(
		NumericColumn("sales", 1, math.NaN(), 3, math.Inf(1), 5),
		TextColumn("region", "north", "", "south", "east", ""),
	)
	require.NoError(t, err)

	sales, ok := tbl.Column("sales")
	require.True(t, ok)
	assert.Equal(t, 5, sales.Len())
	assert.Equal(t, 3, sales.PresentCount())
	assert.Equal(t, 2, sales.MissingCount())
	assert.Equal(t, []float64{1, 3, 5}, sales.Floats())

	region, _ := tbl.Column("region")
	assert.Equal(t, 2, region.MissingCount())
	assert.True(t, tbl.Row(1)["region"].IsMissing())

	_, err = tbl.MustColumn("nope")
	assert.ErrorIs(t, err, core.ErrInvalidColumnReference)
}

func TestBuilder_RowMajor(t *testing.T) {
	b := NewBuilder(
		ColumnSpec{Name: "when", Kind: KindDatetime},
		ColumnSpec{Name: "ok", Kind: KindBoolean},
	)
	require.NoError(t, b.Append(Time(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), Bool(true)))
	require.NoError(t, b.Append(Missing(), Bool(false)))
	assert.ErrorIs(t, b.Append(Bool(true)), core.ErrInvalidTable)

	tbl, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "2024-01-02", tbl.Row(0)["when"].Label())
}

func TestCompare_NaturalOrder(t *testing.T) {
	assert.Equal(t, -1, Compare(Float(2), Float(10)))
	assert.Equal(t, 1, Compare(Text("b"), Text("a")))
	assert.Equal(t, -1, Compare(Bool(false), Bool(true)))
	assert.Equal(t, 1, Compare(Missing(), Float(0)))
	early := Time(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	late := Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -1, Compare(early, late))
}
