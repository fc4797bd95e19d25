// Package charts reshapes tables into chart-ready payloads.
package charts

import (
	"datalens/domain/core"
	"datalens/internal/analyzer"
)

// Kind is a chart type.
type Kind string

const (
	Bar       Kind = "bar"
	Line      Kind = "line"
	Pie       Kind = "pie"
	Scatter   Kind = "scatter"
	Heatmap   Kind = "heatmap"
	Histogram Kind = "histogram"
)

// Aggregation reduces the values of one group to a single number.
type Aggregation string

const (
	Sum   Aggregation = "sum"
	Mean  Aggregation = "mean"
	Count Aggregation = "count"
	Min   Aggregation = "min"
	Max   Aggregation = "max"
)

// Defaults per chart kind.
const (
	DefaultBarLimit       = 20
	DefaultPieLimit       = 10
	DefaultHistogramBins  = 20
	DefaultScatterSamples = 1000

	OtherLabel       = "Other"
	OtherLabelFolded = "Other (folded)"
)

// Params selects the columns and options of a chart.
type Params struct {
	Kind        Kind                       `json:"kind"`
	X           string                     `json:"x"`
	Y           []string                   `json:"y,omitempty"`
	Aggregation Aggregation                `json:"aggregation,omitempty"`
	Limit       int                        `json:"limit,omitempty"`
	FoldOther   *bool                      `json:"foldOther,omitempty"`
	Bins        int                        `json:"bins,omitempty"`
	SampleSize  int                        `json:"sampleSize,omitempty"`
	Color       string                     `json:"color,omitempty"`
	Size        string                     `json:"size,omitempty"`
	Method      analyzer.CorrelationMethod `json:"method,omitempty"`
}

// Series is one named sequence aligned index-for-index with Payload.Labels.
type Series struct {
	Name   string        `json:"name"`
	Values []core.Number `json:"values"`
}

// Point is one scatter point.
type Point struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Color string   `json:"color,omitempty"`
	Size  *float64 `json:"size,omitempty"`
}

// HeatmapData is a labelled 2-D matrix.
type HeatmapData struct {
	RowLabels    []string        `json:"rowLabels"`
	ColumnLabels []string        `json:"columnLabels"`
	Values       [][]core.Number `json:"values"`
	Min          core.Number     `json:"min"`
	Max          core.Number     `json:"max"`
}

// HistogramStats accompanies a histogram payload.
type HistogramStats struct {
	Count  int         `json:"count"`
	Mean   core.Number `json:"mean"`
	Median core.Number `json:"median"`
	Std    core.Number `json:"std"`
}

// Meta describes how a payload was built.
type Meta struct {
	X               string                     `json:"x,omitempty"`
	Y               []string                   `json:"y,omitempty"`
	Aggregation     Aggregation                `json:"aggregation,omitempty"`
	Limit           int                        `json:"limit,omitempty"`
	TotalGroups     int                        `json:"totalGroups,omitempty"`
	OtherFolded     bool                       `json:"otherFolded"`
	FoldedGroups    int                        `json:"foldedGroups,omitempty"`
	TruncatedGroups int                        `json:"truncatedGroups,omitempty"`
	PointCount      int                        `json:"pointCount,omitempty"`
	TotalPoints     int                        `json:"totalPoints,omitempty"`
	Sampled         bool                       `json:"sampled,omitempty"`
	BinEdges        []float64                  `json:"binEdges,omitempty"`
	Stats           *HistogramStats            `json:"stats,omitempty"`
	Method          analyzer.CorrelationMethod `json:"method,omitempty"`
	Excluded        []analyzer.ExcludedColumn  `json:"excluded,omitempty"`
	Reason          string                     `json:"reason,omitempty"`
}

// Payload is a chart-ready structure. For bar, line, pie and histogram every
// series has exactly len(Labels) values.
type Payload struct {
	Kind    Kind         `json:"kind"`
	Labels  []string     `json:"labels"`
	Series  []Series     `json:"series"`
	Points  []Point      `json:"points,omitempty"`
	Heatmap *HeatmapData `json:"heatmap,omitempty"`
	Meta    Meta         `json:"meta"`
}

// Suggestion is the recommended chart for a pair of column kinds.
type Suggestion struct {
	Kind        Kind   `json:"kind"`
	Reasoning   string `json:"reasoning"`
	Recommended bool   `json:"recommended"`
}
