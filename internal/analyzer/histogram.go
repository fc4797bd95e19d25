package analyzer

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

const (
	// DefaultBins is the statistics histogram bucket count.
	DefaultBins = 10
	// MaxBins bounds caller-supplied bucket counts.
	MaxBins = 1000

	maxSturgesBins = 20
)

// SturgesBins returns ceil(log2 n)+1, capped at 20.
func SturgesBins(n int) int {
	if n < 2 {
		return 1
	}
	b := int(math.Ceil(math.Log2(float64(n)))) + 1
	return min(b, maxSturgesBins)
}

func resolveBins(bins, n int) int {
	switch {
	case bins == 0:
		return DefaultBins
	case bins < 0:
		return SturgesBins(n)
	}
	return bins
}

// Histogram counts values into bins equal-width buckets over [min, max].
// Buckets are closed-open except the last, which also holds the maximum.
// When min == max a single bucket holds every value.
func Histogram(values []float64, bins int) (edges []float64, counts []int) {
	if len(values) == 0 {
		return []float64{}, []int{}
	}
	if bins < 1 {
		bins = 1
	}

	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	if lo == hi {
		return []float64{lo, hi}, []int{len(values)}
	}

	width := hi/float64(bins) - lo/float64(bins)
	edges = make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	counts = make([]int, bins)
	for _, v := range values {
		counts[bucketIndex(v, edges, width)]++
	}
	return edges, counts
}

// bucketIndex estimates the bucket arithmetically, then corrects against the
// stored edges so floating-point drift never moves a boundary value.
func bucketIndex(v float64, edges []float64, width float64) int {
	last := len(edges) - 2
	pos := (v - edges[0]) / width
	i := last
	if pos < float64(last) {
		i = max(int(pos), 0)
	}
	for i > 0 && v < edges[i] {
		i--
	}
	for i < last && v >= edges[i+1] {
		i++
	}
	// edges collapse when max-min is a few ulps; an edge value belongs to
	// the first bucket starting there
	for i > 0 && v == edges[i] && edges[i-1] == edges[i] {
		i--
	}
	return i
}

// MidpointLabels labels each bucket with its midpoint.
func MidpointLabels(edges []float64) []string {
	if len(edges) < 2 {
		return []string{}
	}
	labels := make([]string, len(edges)-1)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f", edges[i]/2+edges[i+1]/2)
	}
	return labels
}

// RangeLabels labels each bucket as "lo-hi".
func RangeLabels(edges []float64) []string {
	if len(edges) < 2 {
		return []string{}
	}
	labels := make([]string, len(edges)-1)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f-%.2f", edges[i], edges[i+1])
	}
	return labels
}
