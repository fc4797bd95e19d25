package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"datalens/domain/core"
	"datalens/domain/table"
)

// Strength thresholds on |coefficient|.
const (
	ModerateThreshold = 0.5
	StrongThreshold   = 0.7
)

// Exclusion reasons.
const (
	ExcludedNoValues     = "no_values"
	ExcludedZeroVariance = "zero_variance"
)

// ParseCorrelationMethod maps a method name onto a CorrelationMethod. The
// empty string selects Pearson.
func ParseCorrelationMethod(s string) (CorrelationMethod, error) {
	switch CorrelationMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", Pearson:
		return Pearson, nil
	case Spearman:
		return Spearman, nil
	case Kendall:
		return Kendall, nil
	}
	return "", core.NewParameterError("method", fmt.Sprintf("unknown correlation method %q", s))
}

// correlatable is a numeric column laid out by row, NaN marking missing.
type correlatable struct {
	name   string
	values []float64
}

// Correlate computes the pairwise correlation matrix of the numeric columns
// using pairwise-complete observations.
func Correlate(t *table.Table, method CorrelationMethod) (*CorrelationResult, error) {
	method, err := ParseCorrelationMethod(string(method))
	if err != nil {
		return nil, err
	}

	result := &CorrelationResult{
		Method:      method,
		Columns:     []string{},
		Matrix:      core.NewOrderedMap[*core.OrderedMap[core.Number]](),
		Excluded:    []ExcludedColumn{},
		StrongPairs: []StrongPair{},
	}

	var cols []correlatable
	for _, col := range numericColumns(t) {
		if col.IsEmpty() {
			result.Excluded = append(result.Excluded, ExcludedColumn{Column: col.Name(), Reason: ExcludedNoValues})
			continue
		}
		c := correlatable{name: col.Name(), values: make([]float64, col.Len())}
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range c.values {
			f, ok := col.At(i).Float()
			if !ok {
				c.values[i] = math.NaN()
				continue
			}
			c.values[i] = f
			lo, hi = math.Min(lo, f), math.Max(hi, f)
		}
		if lo == hi {
			result.Excluded = append(result.Excluded, ExcludedColumn{Column: col.Name(), Reason: ExcludedZeroVariance})
			continue
		}
		cols = append(cols, c)
	}

	switch {
	case len(Classify(t).Numeric) == 0:
		result.Reason = ReasonNoNumericColumns
	case len(cols) < 2:
		result.Reason = ReasonInsufficientColumns
	}

	k := len(cols)
	if k == 0 {
		return result, nil
	}

	sym := mat.NewSymDense(k, nil)
	sizes := make([][]int, k)
	for i := range sizes {
		sizes[i] = make([]int, k)
	}

	for i := 0; i < k; i++ {
		sym.SetSym(i, i, 1)
		for j := i + 1; j < k; j++ {
			xs, ys := completePairs(cols[i].values, cols[j].values)
			sizes[i][j] = len(xs)
			r := coefficient(method, xs, ys)
			if !math.IsNaN(r) {
				r = math.Max(-1, math.Min(1, r))
			}
			sym.SetSym(i, j, r)
		}
	}

	for i, c := range cols {
		result.Columns = append(result.Columns, c.name)
		row := core.NewOrderedMap[core.Number]()
		for j := range cols {
			row.Set(cols[j].name, core.Defined(sym.At(i, j)))
		}
		result.Matrix.Set(c.name, row)
	}

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := sym.At(i, j)
			strength, ok := classifyStrength(r)
			if !ok {
				continue
			}
			result.StrongPairs = append(result.StrongPairs, StrongPair{
				ColumnA:     cols[i].name,
				ColumnB:     cols[j].name,
				Coefficient: r,
				Strength:    strength,
				PValue:      pValue(method, r, sizes[i][j]),
				SampleSize:  sizes[i][j],
			})
		}
	}

	sort.SliceStable(result.StrongPairs, func(a, b int) bool {
		pa, pb := result.StrongPairs[a], result.StrongPairs[b]
		if ma, mb := math.Abs(pa.Coefficient), math.Abs(pb.Coefficient); ma != mb {
			return ma > mb
		}
		loA, hiA := lexicalPair(pa)
		loB, hiB := lexicalPair(pb)
		if loA != loB {
			return loA < loB
		}
		return hiA < hiB
	})

	return result, nil
}

// lexicalPair returns the pair's column names in lexical order. ColumnA and
// ColumnB themselves keep table order.
func lexicalPair(p StrongPair) (lo, hi string) {
	if p.ColumnB < p.ColumnA {
		return p.ColumnB, p.ColumnA
	}
	return p.ColumnA, p.ColumnB
}

// completePairs returns the rows where both columns are present.
func completePairs(a, b []float64) (xs, ys []float64) {
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	return xs, ys
}

// coefficient returns NaN for a degenerate subset.
func coefficient(method CorrelationMethod, xs, ys []float64) float64 {
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN()
	}
	switch method {
	case Spearman:
		return stat.Correlation(averageRanks(xs), averageRanks(ys), nil)
	case Kendall:
		return kendallTauB(xs, ys)
	default:
		xs, _ = rescaled(xs)
		ys, _ = rescaled(ys)
		return stat.Correlation(xs, ys, nil)
	}
}

// kendallTauB counts concordant and discordant pairs with tie correction.
func kendallTauB(xs, ys []float64) float64 {
	n := len(xs)
	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := xs[i] - xs[j]
			dy := ys[i] - ys[j]
			switch {
			case dx == 0 && dy == 0:
				tiesX++
				tiesY++
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}

	n0 := float64(n) * float64(n-1) / 2
	denom := math.Sqrt((n0 - tiesX) * (n0 - tiesY))
	if denom == 0 {
		return math.NaN()
	}
	return (concordant - discordant) / denom
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func classifyStrength(r float64) (string, bool) {
	abs := math.Abs(r)
	if math.IsNaN(r) || abs < ModerateThreshold {
		return "", false
	}
	level := "moderate"
	if abs >= StrongThreshold {
		level = "strong"
	}
	sign := "positive"
	if r < 0 {
		sign = "negative"
	}
	return level + " " + sign, true
}

// pValue is the two-sided significance of r over n complete pairs.
// Pearson and Spearman use Student's t with n-2 degrees of freedom; Kendall
// uses the normal approximation of tau.
func pValue(method CorrelationMethod, r float64, n int) core.Number {
	if n < 3 || math.IsNaN(r) {
		return core.Undefined()
	}
	if method == Kendall {
		nf := float64(n)
		z := 3 * r * math.Sqrt(nf*(nf-1)) / math.Sqrt(2*(2*nf+5))
		return core.Defined(2 * distuv.UnitNormal.CDF(-math.Abs(z)))
	}
	if math.Abs(r) >= 1 {
		return core.Defined(0)
	}
	df := float64(n - 2)
	tStat := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return core.Defined(2 * dist.CDF(-math.Abs(tStat)))
}
