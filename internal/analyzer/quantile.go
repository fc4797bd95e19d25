package analyzer

import (
	"math"
	"sort"

	"datalens/domain/core"
)

// quantile returns the p-quantile of an ascending slice by linear
// interpolation between closest ranks, h = (n-1)p. This is the numpy and
// pandas default.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Quantile returns the p-quantile of values, which need not be sorted.
func Quantile(values []float64, p float64) core.Number {
	if len(values) == 0 || p < 0 || p > 1 || math.IsNaN(p) {
		return core.Undefined()
	}
	return core.Defined(quantile(sortedCopy(values), p))
}

// Quartiles returns Q1, the median and Q3 of values.
func Quartiles(values []float64) (q1, median, q3 core.Number) {
	if len(values) == 0 {
		return core.Undefined(), core.Undefined(), core.Undefined()
	}
	sorted := sortedCopy(values)
	return core.Defined(quantile(sorted, 0.25)),
		core.Defined(quantile(sorted, 0.5)),
		core.Defined(quantile(sorted, 0.75))
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
