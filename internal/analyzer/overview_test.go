package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/table"
)

func TestOverview_CountsAndQuality(t *testing.T) {
	nan := math.NaN()
	tbl := mustTable(t,
		table.NumericColumn("amount", 10, 10, nan, 30),
		table.TextColumn("region", "north", "north", "south", ""),
		table.BoolColumn("promo", true, true, false, false),
		table.NumericColumn("blank", nan, nan, nan, nan),
	)

	o := Overview(tbl)
	assert.Equal(t, 4, o.TotalRows)
	assert.Equal(t, 4, o.TotalColumns)
	assert.Equal(t, 2, o.NumericColumns)
	assert.Equal(t, 1, o.EmptyNumericColumns)
	assert.Equal(t, 1, o.CategoricalColumns)
	assert.Equal(t, 1, o.BooleanColumns)
	assert.Equal(t, 6, o.MissingCells)
	assert.InDelta(t, 37.5, defined(t, o.MissingPercentage), 1e-12)
	assert.InDelta(t, 62.5, defined(t, o.Completeness), 1e-12)
	assert.Equal(t, 1, o.DuplicateRows)
	assert.InDelta(t, 75.0, defined(t, o.Uniqueness), 1e-12)

	require.Len(t, o.Columns, 4)
	assert.Equal(t, ColumnProfile{Name: "region", Kind: table.KindCategorical, MissingCount: 1, UniqueCount: 2}, o.Columns[1])
}

func TestOverview_DuplicateKeysDoNotCollide(t *testing.T) {
	tbl := mustTable(t,
		table.TextColumn("left", "a\x1fb", "a", "a"),
		table.TextColumn("right", "c", "b\x1fc", "b\x1fc"),
	)

	o := Overview(tbl)
	assert.Equal(t, 1, o.DuplicateRows)
}

func TestOverview_EmptyTable(t *testing.T) {
	o := Overview(mustTable(t, table.NumericColumn("x")))
	assert.Equal(t, 0, o.TotalRows)
	assert.False(t, o.MissingPercentage.IsDefined())
	assert.False(t, o.Completeness.IsDefined())
	assert.False(t, o.Uniqueness.IsDefined())
}

func TestClassify_KeepsTableOrder(t *testing.T) {
	nan := math.NaN()
	tbl := mustTable(t,
		table.TextColumn("b", "x"),
		table.NumericColumn("z", 1),
		table.NumericColumn("a", 2),
		table.NumericColumn("empty", nan),
		table.BoolColumn("flag", true),
	)

	c := Classify(tbl)
	assert.Equal(t, []string{"z", "a"}, c.Numeric)
	assert.Equal(t, []string{"b"}, c.Categorical)
	assert.Equal(t, []string{"flag"}, c.Boolean)
	assert.Equal(t, []string{"empty"}, c.Empty)
	assert.Empty(t, c.Datetime)
	assert.Equal(t, c, Classify(tbl))
}
