package charts

import (
	"sort"

	"github.com/montanaflynn/stats"

	"datalens/domain/core"
	"datalens/domain/table"
)

// group collects the rows that share one X label.
type group struct {
	label  string
	key    table.Value
	rows   int
	values [][]float64
}

// groupRows buckets rows by the canonical label of x, in first-seen order.
// Rows with a missing x are dropped. values[s] holds the present values of
// ys[s] for the group.
func groupRows(x *table.Column, ys []*table.Column) []*group {
	index := make(map[string]*group)
	var groups []*group
	for i := 0; i < x.Len(); i++ {
		key := x.At(i)
		if key.IsMissing() {
			continue
		}
		label := key.Label()
		g, ok := index[label]
		if !ok {
			g = &group{label: label, key: key, values: make([][]float64, len(ys))}
			index[label] = g
			groups = append(groups, g)
		}
		g.rows++
		for s, y := range ys {
			if f, ok := y.At(i).Float(); ok {
				g.values[s] = append(g.values[s], f)
			}
		}
	}
	return groups
}

// aggregate reduces values. Only count is defined over an empty set.
func aggregate(values []float64, agg Aggregation) core.Number {
	if agg == Count {
		return core.Defined(float64(len(values)))
	}
	if len(values) == 0 {
		return core.Undefined()
	}
	var (
		v   float64
		err error
	)
	switch agg {
	case Mean:
		v, err = stats.Mean(values)
	case Min:
		v, err = stats.Min(values)
	case Max:
		v, err = stats.Max(values)
	default:
		v, err = stats.Sum(values)
	}
	if err != nil {
		return core.Undefined()
	}
	return core.Defined(v)
}

// sortByValue orders groups by their aggregated first series, descending,
// with undefined values last and ties broken by label.
func sortByValue(groups []*group, vals []core.Number) {
	idx := make([]int, len(groups))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, oka := vals[idx[a]].Value()
		vb, okb := vals[idx[b]].Value()
		switch {
		case oka != okb:
			return oka
		case oka && va != vb:
			return va > vb
		}
		return groups[idx[a]].label < groups[idx[b]].label
	})

	sortedGroups := make([]*group, len(groups))
	sortedVals := make([]core.Number, len(vals))
	for i, j := range idx {
		sortedGroups[i], sortedVals[i] = groups[j], vals[j]
	}
	copy(groups, sortedGroups)
	copy(vals, sortedVals)
}

// sortNatural orders groups by the natural order of their X values.
func sortNatural(groups []*group) {
	sort.SliceStable(groups, func(a, b int) bool {
		return table.Compare(groups[a].key, groups[b].key) < 0
	})
}
