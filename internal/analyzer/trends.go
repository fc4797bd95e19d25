package analyzer

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"datalens/domain/core"
	"datalens/domain/table"
)

const (
	// DefaultMaxPoints bounds the plotted series of each trend.
	DefaultMaxPoints = 100

	// stableFraction is the share of the value range the fitted line must
	// move across the series before it counts as a trend.
	stableFraction = 0.01
)

var movingAverageWindows = [2]int{7, 30}

// AnalyzeTrends fits value = a + b·i by least squares for each numeric
// column, where i is the position among the column's present values.
func AnalyzeTrends(t *table.Table, opts TrendOptions) (*TrendsResult, error) {
	maxPoints := opts.MaxPoints
	switch {
	case maxPoints == 0:
		maxPoints = DefaultMaxPoints
	case maxPoints < 2:
		maxPoints = 2
	}

	cols, err := trendColumns(t, opts.Columns)
	if err != nil {
		return nil, err
	}

	result := &TrendsResult{
		MaxPoints: maxPoints,
		Columns:   core.NewOrderedMap[TrendResult](),
		Skipped:   []SkippedColumn{},
	}
	if len(cols) == 0 {
		result.Reason = ReasonNoNumericColumns
		return result, nil
	}

	for _, col := range cols {
		values := col.Floats()
		if len(values) < 2 {
			result.Skipped = append(result.Skipped, SkippedColumn{Column: col.Name(), Reason: StatusInsufficientData})
			continue
		}
		result.Columns.Set(col.Name(), fitTrend(values, maxPoints))
	}

	return result, nil
}

func trendColumns(t *table.Table, names []string) ([]*table.Column, error) {
	if len(names) == 0 {
		return numericColumns(t), nil
	}
	cols := make([]*table.Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		col, err := t.MustColumn(name)
		if err != nil {
			return nil, err
		}
		if col.Kind() != table.KindNumeric {
			return nil, core.NewParameterError("columns", fmt.Sprintf("column %q is %s, not numeric", name, col.Kind()))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, col)
	}
	return cols, nil
}

func fitTrend(values []float64, maxPoints int) TrendResult {
	n := len(values)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	// the fit runs in rescaled units; slope and intercept scale back linearly
	scaled, scale := rescaled(values)
	mean, _ := stats.Mean(scaled)
	mean *= scale

	res := TrendResult{
		Direction:  Stable,
		DataPoints: n,
		StartValue: core.Defined(values[0]),
		EndValue:   core.Defined(values[n-1]),
		MinValue:   core.Defined(lo),
		MaxValue:   core.Defined(hi),
		MeanValue:  core.Defined(mean),
	}
	if values[0] != 0 {
		res.GrowthRatePercentage = core.Defined((values[n-1] - values[0]) / values[0] * 100)
	}

	if lo == hi {
		res.Slope = core.Defined(0)
		res.Intercept = core.Defined(lo)
	} else {
		alpha, beta := stat.LinearRegression(xs, scaled, nil, false)
		res.Slope = core.Defined(beta * scale)
		res.Intercept = core.Defined(alpha * scale)

		r2 := stat.RSquared(xs, scaled, nil, alpha, beta)
		res.RSquared = core.Defined(math.Max(0, math.Min(1, r2)))
		res.PValue = slopePValue(xs, scaled, alpha, beta)

		if math.Abs(beta)*float64(n-1) >= stableFraction*(hi/scale-lo/scale) {
			if beta > 0 {
				res.Direction = Increasing
			} else {
				res.Direction = Decreasing
			}
		}
	}

	res.Indices = SampleIndices(n, maxPoints)
	res.Values = make([]float64, len(res.Indices))
	for i, idx := range res.Indices {
		res.Values[i] = values[idx]
	}
	res.MovingAverage7 = movingAverageAt(values, movingAverageWindows[0], res.Indices)
	res.MovingAverage30 = movingAverageAt(values, movingAverageWindows[1], res.Indices)

	return res
}

// slopePValue tests the slope against zero with Student's t on n-2
// degrees of freedom.
func slopePValue(xs, ys []float64, alpha, beta float64) core.Number {
	n := len(xs)
	if n < 3 {
		return core.Undefined()
	}
	xMean := stat.Mean(xs, nil)
	var ssRes, sxx float64
	for i, x := range xs {
		r := ys[i] - (alpha + beta*x)
		ssRes += r * r
		sxx += (x - xMean) * (x - xMean)
	}
	df := float64(n - 2)
	se := math.Sqrt(ssRes / df / sxx)
	if se == 0 {
		return core.Defined(0)
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return core.Defined(2 * dist.CDF(-math.Abs(beta/se)))
}

// SampleIndices picks at most m evenly spaced positions out of n, keeping
// the first and last exactly: round(i·(n−1)/(m−1)).
func SampleIndices(n, m int) []int {
	m = max(m, 2)
	if n <= m {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, m)
	span, steps := n-1, m-1
	for i := range out {
		out[i] = (2*i*span + steps) / (2 * steps)
	}
	return out
}

// movingAverageAt returns the trailing w-point mean at each index. The first
// w-1 positions have no full window and are undefined.
func movingAverageAt(values []float64, w int, indices []int) []core.Number {
	prefix := make([]float64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}
	out := make([]core.Number, len(indices))
	for i, idx := range indices {
		if idx < w-1 {
			continue
		}
		out[i] = core.Defined((prefix[idx+1] - prefix[idx+1-w]) / float64(w))
	}
	return out
}
