package charts

import (
	"fmt"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/analyzer"
)

func shapeHistogram(t *table.Table, p Params) (*Payload, error) {
	x, err := resolveX(t, p)
	if err != nil {
		return nil, err
	}
	if err := requireKind(x, "x", table.KindNumeric); err != nil {
		return nil, err
	}

	bins := p.Bins
	switch {
	case bins == 0:
		bins = DefaultHistogramBins
	case bins > analyzer.MaxBins:
		return nil, core.NewParameterError("bins", fmt.Sprintf("must be at most %d", analyzer.MaxBins))
	}

	summary := analyzer.SummarizeValues(x.Floats(), x.MissingCount(), bins)
	dist := summary.Distribution

	counts := make([]core.Number, len(dist.Values))
	for i, c := range dist.Values {
		counts[i] = core.Defined(float64(c))
	}

	return &Payload{
		Kind:   Histogram,
		Labels: analyzer.RangeLabels(dist.BinEdges),
		Series: []Series{{Name: x.Name(), Values: counts}},
		Meta: Meta{
			X:        x.Name(),
			BinEdges: dist.BinEdges,
			Stats: &HistogramStats{
				Count:  summary.Count,
				Mean:   summary.Mean,
				Median: summary.Median,
				Std:    summary.Std,
			},
		},
	}, nil
}
