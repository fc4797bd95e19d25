package analyzer

import (
	"fmt"
	"math"
	"strings"

	"datalens/domain/core"
	"datalens/domain/table"
)

const (
	DefaultIQRThreshold     = 1.5
	DefaultZScoreThreshold  = 3.0
	DefaultMaxOutlierValues = 100
)

// ParseOutlierMethod maps a method name onto an OutlierMethod. The empty
// string selects IQR.
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "iqr":
		return MethodIQR, nil
	case "zscore", "z-score", "z_score":
		return MethodZScore, nil
	}
	return "", core.NewParameterError("method", fmt.Sprintf("unknown outlier method %q", s))
}

// DefaultThreshold returns the conventional threshold for a method.
func (m OutlierMethod) DefaultThreshold() float64 {
	if m == MethodZScore {
		return DefaultZScoreThreshold
	}
	return DefaultIQRThreshold
}

// DetectOutliers flags outlying values in every declared numeric column.
func DetectOutliers(t *table.Table, opts OutlierOptions) (*OutlierResult, error) {
	method, err := ParseOutlierMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	threshold := opts.Threshold
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		threshold = method.DefaultThreshold()
	}
	maxValues := opts.MaxValues
	if maxValues <= 0 {
		maxValues = DefaultMaxOutlierValues
	}

	result := &OutlierResult{
		Method:    method,
		Threshold: threshold,
		Columns:   core.NewOrderedMap[OutlierReport](),
	}
	if len(Classify(t).Numeric) == 0 {
		result.Reason = ReasonNoNumericColumns
	}

	for _, col := range numericColumns(t) {
		result.Columns.Set(col.Name(), detectColumn(col.Floats(), method, threshold, maxValues))
	}

	return result, nil
}

func detectColumn(values []float64, method OutlierMethod, threshold float64, maxValues int) OutlierReport {
	report := OutlierReport{
		Status:    StatusOK,
		Method:    method,
		Threshold: threshold,
		Values:    []float64{},
	}
	if len(values) == 0 {
		report.Status = StatusInsufficientData
		return report
	}

	var flagged func(v float64) bool
	switch method {
	case MethodZScore:
		sorted := sortedCopy(values)
		m := computeMoments(values, sorted[0] == sorted[len(sorted)-1])
		report.Mean = m.Mean()
		report.Std = m.Std()
		std, ok := report.Std.Value()
		if !ok || std == 0 {
			flagged = func(float64) bool { return false }
			break
		}
		mean := m.mean
		flagged = func(v float64) bool { return math.Abs(v-mean)/std > threshold }
	default:
		sorted := sortedCopy(values)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lower, upper := q1-threshold*iqr, q3+threshold*iqr
		if iqr == 0 {
			median := quantile(sorted, 0.5)
			lower, upper = median, median
		}
		report.Q1 = core.Defined(q1)
		report.Q3 = core.Defined(q3)
		report.IQR = core.Defined(iqr)
		report.LowerBound = core.Defined(lower)
		report.UpperBound = core.Defined(upper)
		flagged = func(v float64) bool { return v < lower || v > upper }
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !flagged(v) {
			continue
		}
		report.Count++
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		if len(report.Values) < maxValues {
			report.Values = append(report.Values, v)
		}
	}
	report.Truncated = report.Count > len(report.Values)
	report.Percentage = percentage(report.Count, len(values))
	if report.Count > 0 {
		report.MinOutlier = core.Defined(lo)
		report.MaxOutlier = core.Defined(hi)
	}

	return report
}
