package charts

import (
	"math"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/analyzer"
)

// shapeHeatmap reshapes the correlation matrix into labelled rows. Min and
// max are taken over the defined off-diagonal cells.
func shapeHeatmap(t *table.Table, p Params) (*Payload, error) {
	corr, err := analyzer.Correlate(t, p.Method)
	if err != nil {
		return nil, err
	}

	hm := &HeatmapData{
		RowLabels:    corr.Columns,
		ColumnLabels: corr.Columns,
		Values:       make([][]core.Number, len(corr.Columns)),
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, a := range corr.Columns {
		row := make([]core.Number, len(corr.Columns))
		for j, b := range corr.Columns {
			row[j] = corr.Coefficient(a, b)
			if v, ok := row[j].Value(); ok && i != j {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
		hm.Values[i] = row
	}
	if lo <= hi {
		hm.Min, hm.Max = core.Defined(lo), core.Defined(hi)
	}

	return &Payload{
		Kind:    Heatmap,
		Labels:  corr.Columns,
		Series:  []Series{},
		Heatmap: hm,
		Meta: Meta{
			Method:   corr.Method,
			Excluded: corr.Excluded,
			Reason:   corr.Reason,
		},
	}, nil
}
