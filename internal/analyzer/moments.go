package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"

	"datalens/domain/core"
)

// largeMagnitude is the absolute value past which sums of squares can
// overflow, so samples are rescaled before accumulating.
const largeMagnitude = 1e100

// rescaled divides values by a power of two that brings the largest
// magnitude into [0.5, 1) and returns that factor. Values below
// largeMagnitude are returned as is with a factor of 1.
func rescaled(values []float64) ([]float64, float64) {
	peak := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > peak && !math.IsInf(a, 0) {
			peak = a
		}
	}
	if peak < largeMagnitude {
		return values, 1
	}
	_, exp := math.Frexp(peak)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Ldexp(v, -exp)
	}
	return out, math.Ldexp(1, exp)
}

// moments holds the mean, sample variance and central moments of a sample.
// variance and the central moments are kept in rescaled units.
type moments struct {
	n        int
	scale    float64
	mean     float64
	variance float64
	constant bool
	m2       float64
	m3       float64
	m4       float64
}

// computeMoments makes one pass for the mean and variance and one more for
// the higher central moments. constant short-circuits every spread measure
// to exactly zero so rounding in the mean cannot fake a tiny variance.
func computeMoments(values []float64, constant bool) moments {
	m := moments{n: len(values), scale: 1, constant: constant}
	if m.n == 0 {
		return m
	}

	if constant {
		m.mean = values[0]
		return m
	}

	scaled, scale := rescaled(values)
	m.scale = scale
	mean, _ := stats.Mean(scaled)
	if m.n >= 2 {
		m.variance, _ = stats.SampleVariance(scaled)
	}

	for _, v := range scaled {
		d := v - mean
		d2 := d * d
		m.m2 += d2
		m.m3 += d2 * d
		m.m4 += d2 * d2
	}
	n := float64(m.n)
	m.m2 /= n
	m.m3 /= n
	m.m4 /= n
	m.mean = mean * scale

	return m
}

func (m moments) Mean() core.Number {
	if m.n == 0 {
		return core.Undefined()
	}
	return core.Defined(m.mean)
}

// Variance is the sample variance (divisor n-1).
func (m moments) Variance() core.Number {
	switch {
	case m.n < 2:
		return core.Undefined()
	case m.constant:
		return core.Defined(0)
	}
	return core.Defined(m.variance * m.scale * m.scale)
}

// Std stays defined when the variance itself is too large to represent.
func (m moments) Std() core.Number {
	switch {
	case m.n < 2:
		return core.Undefined()
	case m.constant:
		return core.Defined(0)
	}
	return core.Defined(math.Sqrt(m.variance) * m.scale)
}

// Skewness is the adjusted Fisher-Pearson coefficient G1.
func (m moments) Skewness() core.Number {
	if m.n < 3 || m.constant || m.m2 == 0 {
		return core.Undefined()
	}
	n := float64(m.n)
	g1 := m.m3 / math.Pow(m.m2, 1.5)
	return core.Defined(g1 * math.Sqrt(n*(n-1)) / (n - 2))
}

// Kurtosis is the bias-corrected excess kurtosis G2.
func (m moments) Kurtosis() core.Number {
	if m.n < 4 || m.constant || m.m2 == 0 {
		return core.Undefined()
	}
	n := float64(m.n)
	g2 := m.m4/(m.m2*m.m2) - 3
	return core.Defined(((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3)))
}

// mode returns the smallest of the most frequent values of an ascending
// slice, or undefined when no value repeats.
func mode(sorted []float64) core.Number {
	best, bestCount := 0.0, 1
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	if bestCount < 2 {
		return core.Undefined()
	}
	return core.Defined(best)
}

func percentage(part, whole int) core.Number {
	if whole == 0 {
		return core.Undefined()
	}
	return core.Defined(float64(part) / float64(whole) * 100)
}
