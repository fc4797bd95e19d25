package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/table"
)

func skewedTable(t *testing.T) *table.Table {
	nan := math.NaN()
	return mustTable(t,
		table.NumericColumn("sales", 10, 12, 11, 13, 1000, 14, 9, nan, 15, 12),
		table.NumericColumn("cost", 3, 4, 3.5, nan, 40, 5, 2, 4, 6, 4),
		table.NumericColumn("returns", 1, 0, 2, 1, 0, 3, 1, 1, 0, 2),
		table.TextColumn("region", "n", "s", "n", "e", "w", "s", "n", "e", "w", "n"),
	)
}

func TestProperty_QuartileConsistency(t *testing.T) {
	tbl := skewedTable(t)

	stats, err := Summarize(tbl, SummaryOptions{})
	require.NoError(t, err)
	outliers, err := DetectOutliers(tbl, OutlierOptions{Method: MethodIQR, Threshold: 1.5})
	require.NoError(t, err)

	for _, name := range stats.Columns.Keys() {
		s, _ := stats.Columns.Get(name)
		o, ok := outliers.Columns.Get(name)
		require.True(t, ok, name)

		q1, q3 := defined(t, s.Q25), defined(t, s.Q75)
		assert.Equal(t, q1, defined(t, o.Q1), name)
		assert.Equal(t, q3, defined(t, o.Q3), name)
		if q3 > q1 {
			assert.Equal(t, q1-1.5*(q3-q1), defined(t, o.LowerBound), name)
			assert.Equal(t, q3+1.5*(q3-q1), defined(t, o.UpperBound), name)
		}
	}
}

func TestProperty_CorrelationSymmetryAndBounds(t *testing.T) {
	tbl := skewedTable(t)

	for _, method := range []CorrelationMethod{Pearson, Spearman, Kendall} {
		res, err := Correlate(tbl, method)
		require.NoError(t, err)

		for _, a := range res.Columns {
			assert.Equal(t, 1.0, defined(t, res.Coefficient(a, a)), "%s diagonal %s", method, a)
			for _, b := range res.Columns {
				ab, ba := res.Coefficient(a, b), res.Coefficient(b, a)
				assert.Equal(t, ab, ba, "%s %s/%s", method, a, b)
				if v, ok := ab.Value(); ok {
					assert.GreaterOrEqual(t, v, -1.0)
					assert.LessOrEqual(t, v, 1.0)
				}
			}
		}
	}
}

func TestProperty_HistogramConservation(t *testing.T) {
	tbl := skewedTable(t)

	for _, bins := range []int{0, -1, 1, 3, 7, 50} {
		res, err := Summarize(tbl, SummaryOptions{Bins: bins})
		require.NoError(t, err)
		res.Columns.Range(func(name string, s ColumnSummary) bool {
			total := 0
			for _, c := range s.Distribution.Values {
				total += c
			}
			assert.Equal(t, s.Count, total, "bins=%d column=%s", bins, name)
			assert.Len(t, s.Distribution.Labels, len(s.Distribution.Values))
			return true
		})
	}
}

func TestProperty_ZeroVarianceSafety(t *testing.T) {
	tbl := mustTable(t,
		table.NumericColumn("flat", repeat(5, 10)...),
		table.NumericColumn("x", seq(1, 10)...),
		table.NumericColumn("y", 2, 1, 4, 3, 6, 5, 8, 7, 10, 9),
	)

	stats, err := Summarize(tbl, SummaryOptions{})
	require.NoError(t, err)
	flat, _ := stats.Columns.Get("flat")
	assert.Equal(t, 0.0, defined(t, flat.Std))
	assert.False(t, flat.Skewness.IsDefined())
	assert.False(t, flat.Kurtosis.IsDefined())
	assert.Equal(t, []int{10}, flat.Distribution.Values)

	for _, method := range []OutlierMethod{MethodIQR, MethodZScore} {
		outliers, err := DetectOutliers(tbl, OutlierOptions{Method: method})
		require.NoError(t, err)
		o, _ := outliers.Columns.Get("flat")
		assert.Equal(t, 0, o.Count, method)
	}

	corr, err := Correlate(tbl, Pearson)
	require.NoError(t, err)
	assert.NotContains(t, corr.Columns, "flat")
	_, inMatrix := corr.Matrix.Get("flat")
	assert.False(t, inMatrix)
	assert.Contains(t, corr.Excluded, ExcludedColumn{Column: "flat", Reason: ExcludedZeroVariance})

	trends, err := AnalyzeTrends(tbl, TrendOptions{})
	require.NoError(t, err)
	tr, _ := trends.Columns.Get("flat")
	assert.Equal(t, Stable, tr.Direction)
	assert.False(t, tr.RSquared.IsDefined())
}

func TestProperty_MissingValueHandling(t *testing.T) {
	nan := math.NaN()
	tbl := mustTable(t, table.NumericColumn("x", 1, nan, 3, nan, 5))

	stats, err := Summarize(tbl, SummaryOptions{})
	require.NoError(t, err)
	s, _ := stats.Columns.Get("x")
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 3.0, defined(t, s.Mean))

	trends, err := AnalyzeTrends(tbl, TrendOptions{})
	require.NoError(t, err)
	tr, _ := trends.Columns.Get("x")
	// indices [0,1,2] give slope 2; raw rows [0,2,4] would give 1
	assert.InDelta(t, 2.0, defined(t, tr.Slope), 1e-12)
	assert.InDelta(t, 1.0, defined(t, tr.Intercept), 1e-12)
	assert.Equal(t, []int{0, 1, 2}, tr.Indices)
	assert.Equal(t, 3, tr.DataPoints)
}

func TestProperty_EndToEndSalesOutlier(t *testing.T) {
	tbl := mustTable(t, table.NumericColumn("sales", 10, 12, 11, 13, 1000))

	res, err := DetectOutliers(tbl, OutlierOptions{Method: MethodIQR, Threshold: 1.5})
	require.NoError(t, err)
	r, _ := res.Columns.Get("sales")

	assert.Equal(t, 11.0, defined(t, r.Q1))
	assert.Equal(t, 13.0, defined(t, r.Q3))
	assert.Equal(t, 2.0, defined(t, r.IQR))
	assert.Equal(t, 8.0, defined(t, r.LowerBound))
	assert.Equal(t, 16.0, defined(t, r.UpperBound))
	assert.Equal(t, []float64{1000}, r.Values)
	assert.Equal(t, 1, r.Count)
	assert.Equal(t, 20.0, defined(t, r.Percentage))
	assert.False(t, r.Truncated)
}

func TestProperty_StrongPairExtraction(t *testing.T) {
	x := seq(1, 10)
	tbl := mustTable(t,
		table.NumericColumn("x", x...),
		// r(x, high) ≈ 0.955
		table.NumericColumn("high", 1.6, 1.8, 3.8, 3.8, 4.0, 7.8, 6.6, 9.2, 8.0, 10.6),
		// r(x, mid) ≈ 0.554
		table.NumericColumn("mid", 3.82, 1.06, 6.76, 3.06, 0.3, 14.46, 5.12, 13.64, 4.3, 12.82),
		// r(x, low) ≈ 0.300
		table.NumericColumn("low", 6.7, 0.1, 10.6, 2.1, -4.5, 23.1, 3.2, 19.4, -0.5, 15.7),
	)

	res, err := Correlate(tbl, Pearson)
	require.NoError(t, err)

	find := func(a, b string) (StrongPair, bool) {
		for _, p := range res.StrongPairs {
			if (p.ColumnA == a && p.ColumnB == b) || (p.ColumnA == b && p.ColumnB == a) {
				return p, true
			}
		}
		return StrongPair{}, false
	}

	high, ok := find("x", "high")
	require.True(t, ok)
	assert.Equal(t, "strong positive", high.Strength)
	assert.InDelta(t, 0.955, high.Coefficient, 0.001)

	mid, ok := find("x", "mid")
	require.True(t, ok)
	assert.Equal(t, "moderate positive", mid.Strength)
	assert.InDelta(t, 0.554, mid.Coefficient, 0.001)

	_, ok = find("x", "low")
	assert.False(t, ok)

	seen := map[[2]string]bool{}
	for i, p := range res.StrongPairs {
		assert.NotEqual(t, p.ColumnA, p.ColumnB)
		key := [2]string{min(p.ColumnA, p.ColumnB), max(p.ColumnA, p.ColumnB)}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
		if i > 0 {
			assert.GreaterOrEqual(t, math.Abs(res.StrongPairs[i-1].Coefficient), math.Abs(p.Coefficient))
		}
	}
}
