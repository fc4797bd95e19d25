package charts

import (
	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/analyzer"
)

// shapeScatter pairs two numeric columns row by row. Above the sample size
// the points are thinned with an even stride so the result is repeatable.
func shapeScatter(t *table.Table, p Params) (*Payload, error) {
	x, err := resolveX(t, p)
	if err != nil {
		return nil, err
	}
	if err := requireKind(x, "x", table.KindNumeric); err != nil {
		return nil, err
	}
	if len(p.Y) != 1 {
		return nil, core.NewParameterError("y", "scatter plots take exactly one value column")
	}
	ys, err := resolveY(t, p.Y)
	if err != nil {
		return nil, err
	}
	y := ys[0]

	var color, size *table.Column
	if p.Color != "" {
		if color, err = t.MustColumn(p.Color); err != nil {
			return nil, err
		}
	}
	if p.Size != "" {
		if size, err = t.MustColumn(p.Size); err != nil {
			return nil, err
		}
		if err := requireKind(size, "size", table.KindNumeric); err != nil {
			return nil, err
		}
	}

	var rows []int
	for i := 0; i < x.Len(); i++ {
		if x.At(i).IsMissing() || y.At(i).IsMissing() {
			continue
		}
		rows = append(rows, i)
	}

	total := len(rows)
	sampleSize := p.SampleSize
	if sampleSize == 0 {
		sampleSize = DefaultScatterSamples
	}
	sampled := false
	if total > sampleSize {
		picked := make([]int, 0, sampleSize)
		for _, idx := range analyzer.SampleIndices(total, sampleSize) {
			picked = append(picked, rows[idx])
		}
		rows, sampled = picked, true
	}

	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		xv, _ := x.At(r).Float()
		yv, _ := y.At(r).Float()
		pt := Point{X: xv, Y: yv}
		if color != nil {
			pt.Color = color.At(r).Label()
		}
		if size != nil {
			if sv, ok := size.At(r).Float(); ok {
				pt.Size = &sv
			}
		}
		points = append(points, pt)
	}

	return &Payload{
		Kind:   Scatter,
		Labels: []string{},
		Series: []Series{},
		Points: points,
		Meta: Meta{
			X:           x.Name(),
			Y:           p.Y,
			PointCount:  len(points),
			TotalPoints: total,
			Sampled:     sampled,
		},
	}, nil
}
