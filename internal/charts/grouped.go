package charts

import (
	"datalens/domain/core"
	"datalens/domain/table"
)

// shapeRanked builds bar and pie payloads: groups ranked by their aggregated
// first series, cut at the limit, with the remainder either folded into a
// trailing "Other" bucket or dropped and counted in meta.truncatedGroups.
func shapeRanked(t *table.Table, p Params) (*Payload, error) {
	x, err := resolveX(t, p)
	if err != nil {
		return nil, err
	}
	ys, err := resolveY(t, p.Y)
	if err != nil {
		return nil, err
	}

	limit, fold := DefaultBarLimit, false
	if p.Kind == Pie {
		limit, fold = DefaultPieLimit, true
		if len(ys) > 1 {
			return nil, core.NewParameterError("y", "pie charts take at most one value column")
		}
	}
	if p.Limit > 0 {
		limit = p.Limit
	}
	if p.FoldOther != nil {
		fold = *p.FoldOther
	}

	agg := p.Aggregation
	names := append([]string(nil), p.Y...)
	if len(ys) == 0 {
		if agg != "" && agg != Count {
			return nil, core.NewParameterError("y", "is required unless aggregation is count")
		}
		agg = Count
		names = []string{string(Count)}
	} else if agg == "" {
		agg = Sum
	}

	groups := groupRows(x, ys)
	if len(ys) == 0 {
		for _, g := range groups {
			g.values = [][]float64{make([]float64, g.rows)}
		}
	}

	first := make([]core.Number, len(groups))
	for i, g := range groups {
		first[i] = aggregate(g.values[0], agg)
	}
	sortByValue(groups, first)

	kept, rest := groups, []*group(nil)
	if len(groups) > limit {
		kept, rest = groups[:limit], groups[limit:]
	}

	payload := &Payload{
		Kind:   p.Kind,
		Labels: make([]string, 0, len(kept)+1),
		Series: make([]Series, len(names)),
		Meta: Meta{
			X:           x.Name(),
			Y:           p.Y,
			Aggregation: agg,
			Limit:       limit,
			TotalGroups: len(groups),
		},
	}
	for _, g := range kept {
		payload.Labels = append(payload.Labels, g.label)
	}
	for s, name := range names {
		values := make([]core.Number, 0, len(kept)+1)
		for _, g := range kept {
			values = append(values, aggregate(g.values[s], agg))
		}
		payload.Series[s] = Series{Name: name, Values: values}
	}

	switch {
	case len(rest) > 0 && fold:
		payload.Labels = append(payload.Labels, otherLabel(groups))
		for s := range payload.Series {
			var union []float64
			for _, g := range rest {
				union = append(union, g.values[s]...)
			}
			payload.Series[s].Values = append(payload.Series[s].Values, aggregate(union, agg))
		}
		payload.Meta.OtherFolded = true
		payload.Meta.FoldedGroups = len(rest)
	case len(rest) > 0:
		payload.Meta.TruncatedGroups = len(rest)
	}

	return payload, nil
}

// otherLabel avoids colliding with a real category named "Other".
func otherLabel(groups []*group) string {
	for _, g := range groups {
		if g.label == OtherLabel {
			return OtherLabelFolded
		}
	}
	return OtherLabel
}

// shapeLine aggregates each Y series per X value, in X's natural order.
// limit does not apply.
func shapeLine(t *table.Table, p Params) (*Payload, error) {
	x, err := resolveX(t, p)
	if err != nil {
		return nil, err
	}
	if len(p.Y) == 0 {
		return nil, core.NewParameterError("y", "line charts need at least one value column")
	}
	ys, err := resolveY(t, p.Y)
	if err != nil {
		return nil, err
	}
	agg := p.Aggregation
	if agg == "" {
		agg = Sum
	}

	groups := groupRows(x, ys)
	sortNatural(groups)

	payload := &Payload{
		Kind:   Line,
		Labels: make([]string, len(groups)),
		Series: make([]Series, len(ys)),
		Meta: Meta{
			X:           x.Name(),
			Y:           p.Y,
			Aggregation: agg,
			TotalGroups: len(groups),
		},
	}
	for i, g := range groups {
		payload.Labels[i] = g.label
	}
	for s, y := range ys {
		values := make([]core.Number, len(groups))
		for i, g := range groups {
			values[i] = aggregate(g.values[s], agg)
		}
		payload.Series[s] = Series{Name: y.Name(), Values: values}
	}

	return payload, nil
}
