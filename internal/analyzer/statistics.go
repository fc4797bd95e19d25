package analyzer

import (
	"fmt"

	"datalens/domain/core"
	"datalens/domain/table"
)

// Summarize computes a ColumnSummary for every declared numeric column.
// Empty numeric columns are kept with StatusInsufficientData.
func Summarize(t *table.Table, opts SummaryOptions) (*StatisticsResult, error) {
	if opts.Bins > MaxBins {
		return nil, core.NewParameterError("bins", fmt.Sprintf("must be at most %d", MaxBins))
	}

	result := &StatisticsResult{Columns: core.NewOrderedMap[ColumnSummary]()}
	if len(Classify(t).Numeric) == 0 {
		result.Reason = ReasonNoNumericColumns
	}

	for _, col := range numericColumns(t) {
		result.Columns.Set(col.Name(), SummarizeValues(col.Floats(), col.MissingCount(), opts.Bins))
	}

	return result, nil
}

// SummarizeValues summarizes a sample of present values. missing is the
// number of missing cells that accompanied them.
func SummarizeValues(values []float64, missing int, bins int) ColumnSummary {
	s := ColumnSummary{
		Status:            StatusOK,
		Count:             len(values),
		MissingCount:      missing,
		MissingPercentage: percentage(missing, len(values)+missing),
	}
	if len(values) == 0 {
		s.Status = StatusInsufficientData
		s.Distribution = Distribution{Labels: []string{}, Values: []int{}, BinEdges: []float64{}}
		return s
	}

	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	m := computeMoments(values, lo == hi)

	q25 := quantile(sorted, 0.25)
	q50 := quantile(sorted, 0.5)
	q75 := quantile(sorted, 0.75)

	s.Mean = m.Mean()
	s.Median = core.Defined(q50)
	s.Mode = mode(sorted)
	s.Std = m.Std()
	s.Variance = m.Variance()
	s.Min = core.Defined(lo)
	s.Max = core.Defined(hi)
	s.Range = core.Defined(hi - lo)
	s.Q25 = core.Defined(q25)
	s.Q50 = core.Defined(q50)
	s.Q75 = core.Defined(q75)
	s.IQR = core.Defined(q75 - q25)
	s.Skewness = m.Skewness()
	s.Kurtosis = m.Kurtosis()

	n := resolveBins(bins, len(values))
	edges, counts := Histogram(values, n)
	s.Distribution = Distribution{
		Labels:   MidpointLabels(edges),
		Values:   counts,
		BinEdges: edges,
		Bins:     len(counts),
	}

	return s
}
