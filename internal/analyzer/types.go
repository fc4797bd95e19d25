package analyzer

import (
	"datalens/domain/core"
	"datalens/domain/table"
)

// Result reasons and per-column statuses.
const (
	ReasonNoNumericColumns    = "no_numeric_columns"
	ReasonInsufficientColumns = "insufficient_columns"

	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
)

// Classification partitions a table's columns by declared kind.
type Classification struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Datetime    []string `json:"datetime"`
	Boolean     []string `json:"boolean"`
	Empty       []string `json:"empty"`
}

// Distribution is a histogram of one numeric column.
type Distribution struct {
	Labels   []string  `json:"labels"`
	Values   []int     `json:"values"`
	BinEdges []float64 `json:"binEdges"`
	Bins     int       `json:"bins"`
}

// ColumnSummary holds descriptive statistics for one numeric column.
type ColumnSummary struct {
	Status            string       `json:"status"`
	Count             int          `json:"count"`
	MissingCount      int          `json:"missingCount"`
	MissingPercentage core.Number  `json:"missingPercentage"`
	Mean              core.Number  `json:"mean"`
	Median            core.Number  `json:"median"`
	Mode              core.Number  `json:"mode"`
	Std               core.Number  `json:"std"`
	Variance          core.Number  `json:"variance"`
	Min               core.Number  `json:"min"`
	Max               core.Number  `json:"max"`
	Range             core.Number  `json:"range"`
	Q25               core.Number  `json:"q25"`
	Q50               core.Number  `json:"q50"`
	Q75               core.Number  `json:"q75"`
	IQR               core.Number  `json:"iqr"`
	Skewness          core.Number  `json:"skewness"`
	Kurtosis          core.Number  `json:"kurtosis"`
	Distribution      Distribution `json:"distribution"`
}

// SummaryOptions configures Summarize.
type SummaryOptions struct {
	// Bins is the histogram bucket count. Zero selects DefaultBins and a
	// negative value selects Sturges' rule.
	Bins int `json:"bins"`
}

// StatisticsResult is the output of Summarize.
type StatisticsResult struct {
	Columns *core.OrderedMap[ColumnSummary] `json:"columns"`
	Reason  string                          `json:"reason,omitempty"`
}

// CorrelationMethod selects the correlation coefficient.
type CorrelationMethod string

const (
	Pearson  CorrelationMethod = "pearson"
	Spearman CorrelationMethod = "spearman"
	Kendall  CorrelationMethod = "kendall"
)

// ExcludedColumn records a numeric column left out of a correlation matrix.
type ExcludedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// StrongPair is a column pair whose coefficient passes the moderate threshold.
type StrongPair struct {
	ColumnA     string      `json:"columnA"`
	ColumnB     string      `json:"columnB"`
	Coefficient float64     `json:"coefficient"`
	Strength    string      `json:"strength"`
	PValue      core.Number `json:"pValue"`
	SampleSize  int         `json:"sampleSize"`
}

// CorrelationResult is the output of Correlate.
type CorrelationResult struct {
	Method      CorrelationMethod                               `json:"method"`
	Columns     []string                                        `json:"columns"`
	Matrix      *core.OrderedMap[*core.OrderedMap[core.Number]] `json:"matrix"`
	Excluded    []ExcludedColumn                                `json:"excluded"`
	StrongPairs []StrongPair                                    `json:"strongPairs"`
	Reason      string                                          `json:"reason,omitempty"`
}

// Coefficient returns matrix[a][b].
func (r *CorrelationResult) Coefficient(a, b string) core.Number {
	row, ok := r.Matrix.Get(a)
	if !ok {
		return core.Undefined()
	}
	v, _ := row.Get(b)
	return v
}

// OutlierMethod selects the outlier rule.
type OutlierMethod string

const (
	MethodIQR    OutlierMethod = "iqr"
	MethodZScore OutlierMethod = "zscore"
)

// OutlierOptions configures DetectOutliers.
type OutlierOptions struct {
	Method    OutlierMethod `json:"method"`
	Threshold float64       `json:"threshold"`
	MaxValues int           `json:"maxValues"`
}

// OutlierReport describes the outliers of one numeric column.
type OutlierReport struct {
	Status     string        `json:"status"`
	Method     OutlierMethod `json:"method"`
	Threshold  float64       `json:"threshold"`
	LowerBound core.Number   `json:"lowerBound"`
	UpperBound core.Number   `json:"upperBound"`
	Q1         core.Number   `json:"q1"`
	Q3         core.Number   `json:"q3"`
	IQR        core.Number   `json:"iqr"`
	Mean       core.Number   `json:"mean"`
	Std        core.Number   `json:"std"`
	Count      int           `json:"count"`
	Percentage core.Number   `json:"percentage"`
	Values     []float64     `json:"values"`
	Truncated  bool          `json:"truncated"`
	MinOutlier core.Number   `json:"minOutlier"`
	MaxOutlier core.Number   `json:"maxOutlier"`
}

// OutlierResult is the output of DetectOutliers.
type OutlierResult struct {
	Method    OutlierMethod                   `json:"method"`
	Threshold float64                         `json:"threshold"`
	Columns   *core.OrderedMap[OutlierReport] `json:"columns"`
	Reason    string                          `json:"reason,omitempty"`
}

// Direction is the qualitative trend of a series.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// TrendOptions configures AnalyzeTrends.
type TrendOptions struct {
	MaxPoints int      `json:"maxPoints"`
	Columns   []string `json:"columns,omitempty"`
}

// TrendResult is the linear trend of one numeric column.
type TrendResult struct {
	Direction            Direction     `json:"direction"`
	Slope                core.Number   `json:"slope"`
	Intercept            core.Number   `json:"intercept"`
	RSquared             core.Number   `json:"rSquared"`
	PValue               core.Number   `json:"pValue"`
	DataPoints           int           `json:"dataPoints"`
	StartValue           core.Number   `json:"startValue"`
	EndValue             core.Number   `json:"endValue"`
	MinValue             core.Number   `json:"minValue"`
	MaxValue             core.Number   `json:"maxValue"`
	MeanValue            core.Number   `json:"meanValue"`
	GrowthRatePercentage core.Number   `json:"growthRatePercentage"`
	Values               []float64     `json:"values"`
	Indices              []int         `json:"indices"`
	MovingAverage7       []core.Number `json:"movingAverage7"`
	MovingAverage30      []core.Number `json:"movingAverage30"`
}

// SkippedColumn is a column the trend engine could not fit.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// TrendsResult is the output of AnalyzeTrends.
type TrendsResult struct {
	MaxPoints int                           `json:"maxPoints"`
	Columns   *core.OrderedMap[TrendResult] `json:"columns"`
	Skipped   []SkippedColumn               `json:"skipped"`
	Reason    string                        `json:"reason,omitempty"`
}

// ColumnProfile is the per-column part of a DatasetOverview.
type ColumnProfile struct {
	Name         string     `json:"name"`
	Kind         table.Kind `json:"kind"`
	MissingCount int        `json:"missingCount"`
	UniqueCount  int        `json:"uniqueCount"`
}

// DatasetOverview summarizes the shape and quality of a table.
type DatasetOverview struct {
	TotalRows           int             `json:"totalRows"`
	TotalColumns        int             `json:"totalColumns"`
	NumericColumns      int             `json:"numericColumns"`
	CategoricalColumns  int             `json:"categoricalColumns"`
	DatetimeColumns     int             `json:"datetimeColumns"`
	BooleanColumns      int             `json:"booleanColumns"`
	EmptyNumericColumns int             `json:"emptyNumericColumns"`
	MissingCells        int             `json:"missingCells"`
	MissingPercentage   core.Number     `json:"missingPercentage"`
	DuplicateRows       int             `json:"duplicateRows"`
	Completeness        core.Number     `json:"completeness"`
	Uniqueness          core.Number     `json:"uniqueness"`
	Columns             []ColumnProfile `json:"columns"`
}
