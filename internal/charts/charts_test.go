package charts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/analyzer"
)

func salesTable(t *testing.T) *table.Table {
	t.Helper()
	nan := math.NaN()
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	tbl, err := table.FromColumns(
		table.TextColumn("region", "north", "south", "north", "east", "west", "south", "north", ""),
		table.TimeColumn("date", day(3), day(1), day(2), day(1), day(3), day(2), day(1), day(2)),
		table.NumericColumn("sales", 10, 20, 30, 5, 1, 40, nan, 100),
		table.NumericColumn("units", 1, 2, 3, 1, 1, 4, 2, 9),
		table.BoolColumn("promo", true, false, true, false, false, true, true, false),
	)
	require.NoError(t, err)
	return tbl
}

func numbers(t *testing.T, ns []core.Number) []float64 {
	t.Helper()
	out := make([]float64, len(ns))
	for i, n := range ns {
		v, ok := n.Value()
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

func assertAligned(t *testing.T, p *Payload) {
	t.Helper()
	for _, s := range p.Series {
		assert.Len(t, s.Values, len(p.Labels), "series %s", s.Name)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestShape_BarSortsAndDropsMissingX(t *testing.T) {
	p, err := Shape(salesTable(t), Params{Kind: Bar, X: "region", Y: []string{"sales"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"south", "north", "east", "west"}, p.Labels)
	assert.Equal(t, []float64{60, 40, 5, 1}, numbers(t, p.Series[0].Values))
	assert.Equal(t, Sum, p.Meta.Aggregation)
	assert.Equal(t, DefaultBarLimit, p.Meta.Limit)
	assert.False(t, p.Meta.OtherFolded)
	assertAligned(t, p)
}

func TestShape_BarAggregations(t *testing.T) {
	tbl := salesTable(t)
	cases := []struct {
		agg    Aggregation
		labels []string
		values []float64
	}{
		{Mean, []string{"south", "north", "east", "west"}, []float64{30, 20, 5, 1}},
		{Count, []string{"north", "south", "east", "west"}, []float64{2, 2, 1, 1}},
		{Min, []string{"south", "north", "east", "west"}, []float64{20, 10, 5, 1}},
		{Max, []string{"south", "north", "east", "west"}, []float64{40, 30, 5, 1}},
	}
	for _, tc := range cases {
		t.Run(string(tc.agg), func(t *testing.T) {
			p, err := Shape(tbl, Params{Kind: Bar, X: "region", Y: []string{"sales"}, Aggregation: tc.agg})
			require.NoError(t, err)
			assert.Equal(t, tc.labels, p.Labels)
			assert.Equal(t, tc.values, numbers(t, p.Series[0].Values))
		})
	}
}

func TestShape_BarLimitWithoutFoldReportsTruncation(t *testing.T) {
	p, err := Shape(salesTable(t), Params{Kind: Bar, X: "region", Y: []string{"sales"}, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"south", "north"}, p.Labels)
	assert.Equal(t, 2, p.Meta.TruncatedGroups)
	assert.Equal(t, 4, p.Meta.TotalGroups)
	assertAligned(t, p)
}

func TestShape_BarFoldRecomputesAggregation(t *testing.T) {
	tbl := salesTable(t)

	p, err := Shape(tbl, Params{Kind: Bar, X: "region", Y: []string{"sales"}, Aggregation: Mean, Limit: 1, FoldOther: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"south", OtherLabel}, p.Labels)
	// mean over the remainder rows 10, 30, 5, 1, not the mean of group means
	assert.Equal(t, []float64{30, 11.5}, numbers(t, p.Series[0].Values))
	assert.True(t, p.Meta.OtherFolded)
	assert.Equal(t, 3, p.Meta.FoldedGroups)
	assertAligned(t, p)
}

func TestShape_PieDefaults(t *testing.T) {
	tbl, err := table.FromColumns(table.TextColumn("c",
		"a", "a", "a", "b", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"))
	require.NoError(t, err)

	p, err := Shape(tbl, Params{Kind: Pie, X: "c"})
	require.NoError(t, err)
	require.Len(t, p.Labels, DefaultPieLimit+1)
	assert.Equal(t, "a", p.Labels[0])
	assert.Equal(t, OtherLabel, p.Labels[DefaultPieLimit])
	vals := numbers(t, p.Series[0].Values)
	assert.Equal(t, 3.0, vals[0])
	assert.Equal(t, 2.0, vals[DefaultPieLimit], "k and l fold into Other")
	assert.Equal(t, Count, p.Meta.Aggregation)
	assert.Equal(t, "count", p.Series[0].Name)
	assertAligned(t, p)

	total := 0.0
	for _, v := range vals {
		total += v
	}
	assert.Equal(t, 15.0, total)
}

func TestShape_PieOtherCollision(t *testing.T) {
	tbl, err := table.FromColumns(table.TextColumn("c", "Other", "Other", "a", "b", "c"))
	require.NoError(t, err)

	p, err := Shape(tbl, Params{Kind: Pie, X: "c", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Other", "a", OtherLabelFolded}, p.Labels)
	assert.Equal(t, []float64{2, 1, 2}, numbers(t, p.Series[0].Values))
}

func TestShape_PieRejectsAggregationWithoutY(t *testing.T) {
	_, err := Shape(salesTable(t), Params{Kind: Pie, X: "region", Aggregation: Sum})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestShape_LineNaturalOrderAndAlignment(t *testing.T) {
	p, err := Shape(salesTable(t), Params{Kind: Line, X: "date", Y: []string{"sales", "units"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, p.Labels)
	require.Len(t, p.Series, 2)
	assert.Equal(t, []float64{25, 170, 11}, numbers(t, p.Series[0].Values))
	assert.Equal(t, []float64{5, 16, 2}, numbers(t, p.Series[1].Values))
	assertAligned(t, p)
}

func TestShape_LineUndefinedSlotKeepsAlignment(t *testing.T) {
	nan := math.NaN()
	tbl, err := table.FromColumns(
		table.NumericColumn("year", 2022, 2021, 2023),
		table.NumericColumn("v", 1, nan, 3),
	)
	require.NoError(t, err)

	p, err := Shape(tbl, Params{Kind: Line, X: "year", Y: []string{"v"}, Aggregation: Mean})
	require.NoError(t, err)
	assert.Equal(t, []string{"2021", "2022", "2023"}, p.Labels)
	assert.False(t, p.Series[0].Values[0].IsDefined())
	assertAligned(t, p)
}

func TestShape_ScatterSamplingIsDeterministic(t *testing.T) {
	n := 2500
	xs, ys := make([]float64, n), make([]float64, n)
	for i := range xs {
		xs[i], ys[i] = float64(i), float64(2*i)
	}
	tbl, err := table.FromColumns(table.NumericColumn("x", xs...), table.NumericColumn("y", ys...))
	require.NoError(t, err)

	params := Params{Kind: Scatter, X: "x", Y: []string{"y"}}
	a, err := Shape(tbl, params)
	require.NoError(t, err)
	b, err := Shape(tbl, params)
	require.NoError(t, err)

	assert.Equal(t, a.Points, b.Points)
	assert.Len(t, a.Points, DefaultScatterSamples)
	assert.True(t, a.Meta.Sampled)
	assert.Equal(t, n, a.Meta.TotalPoints)
	assert.Equal(t, Point{X: 0, Y: 0}, a.Points[0])
	assert.Equal(t, Point{X: float64(n - 1), Y: float64(2 * (n - 1))}, a.Points[len(a.Points)-1])
}

func TestShape_ScatterColorAndSize(t *testing.T) {
	p, err := Shape(salesTable(t), Params{Kind: Scatter, X: "units", Y: []string{"sales"}, Color: "region", Size: "units"})
	require.NoError(t, err)

	require.Len(t, p.Points, 7)
	assert.Equal(t, "north", p.Points[0].Color)
	require.NotNil(t, p.Points[0].Size)
	assert.Equal(t, 1.0, *p.Points[0].Size)
	assert.Equal(t, "", p.Points[6].Color)
}

func TestShape_ScatterRejectsCategoricalAxis(t *testing.T) {
	_, err := Shape(salesTable(t), Params{Kind: Scatter, X: "region", Y: []string{"sales"}})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestShape_Heatmap(t *testing.T) {
	p, err := Shape(salesTable(t), Params{Kind: Heatmap, Method: analyzer.Spearman})
	require.NoError(t, err)

	require.NotNil(t, p.Heatmap)
	assert.Equal(t, []string{"sales", "units"}, p.Heatmap.RowLabels)
	assert.Equal(t, p.Heatmap.RowLabels, p.Heatmap.ColumnLabels)
	require.Len(t, p.Heatmap.Values, 2)
	assert.Equal(t, p.Heatmap.Values[0][1], p.Heatmap.Values[1][0])
	assert.Equal(t, analyzer.Spearman, p.Meta.Method)
	assert.True(t, p.Heatmap.Min.IsDefined())
}

func TestShape_Histogram(t *testing.T) {
	p, err := Shape(salesTable(t), Params{Kind: Histogram, X: "units", Bins: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"1.00-3.00", "3.00-5.00", "5.00-7.00", "7.00-9.00"}, p.Labels)
	assert.Equal(t, []float64{5, 2, 0, 1}, numbers(t, p.Series[0].Values))
	require.NotNil(t, p.Meta.Stats)
	assert.Equal(t, 8, p.Meta.Stats.Count)
	assert.InDelta(t, 2.875, p.Meta.Stats.Mean.Or(0), 1e-12)
	assertAligned(t, p)

	d, err := Shape(salesTable(t), Params{Kind: Histogram, X: "sales"})
	require.NoError(t, err)
	assert.Len(t, d.Labels, DefaultHistogramBins)
}

func TestShape_Errors(t *testing.T) {
	tbl := salesTable(t)
	cases := []struct {
		name   string
		params Params
		want   error
	}{
		{"unknown x", Params{Kind: Bar, X: "nope", Y: []string{"sales"}}, core.ErrInvalidColumnReference},
		{"unknown y", Params{Kind: Line, X: "date", Y: []string{"nope"}}, core.ErrInvalidColumnReference},
		{"text y", Params{Kind: Bar, X: "date", Y: []string{"region"}}, core.ErrInvalidParameter},
		{"bad aggregation", Params{Kind: Bar, X: "region", Y: []string{"sales"}, Aggregation: "median"}, core.ErrInvalidParameter},
		{"bad kind", Params{Kind: "radar", X: "region"}, core.ErrInvalidParameter},
		{"negative limit", Params{Kind: Bar, X: "region", Y: []string{"sales"}, Limit: -1}, core.ErrInvalidParameter},
		{"histogram on text", Params{Kind: Histogram, X: "region"}, core.ErrInvalidParameter},
		{"missing x", Params{Kind: Bar, Y: []string{"sales"}}, core.ErrInvalidParameter},
		{"unknown color", Params{Kind: Scatter, X: "units", Y: []string{"sales"}, Color: "nope"}, core.ErrInvalidColumnReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Shape(tbl, tc.params)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestShape_LabelSeriesAlignmentAcrossKinds(t *testing.T) {
	tbl := salesTable(t)
	for _, params := range []Params{
		{Kind: Bar, X: "region", Y: []string{"sales", "units"}},
		{Kind: Bar, X: "promo", Y: []string{"sales"}, Limit: 1, FoldOther: boolPtr(true)},
		{Kind: Pie, X: "region", Y: []string{"units"}, Limit: 2},
		{Kind: Pie, X: "date"},
		{Kind: Line, X: "region", Y: []string{"sales", "units"}, Aggregation: Max},
		{Kind: Line, X: "promo", Y: []string{"sales"}, Aggregation: Count},
	} {
		p, err := Shape(tbl, params)
		require.NoError(t, err, "%+v", params)
		assertAligned(t, p)
	}
}
