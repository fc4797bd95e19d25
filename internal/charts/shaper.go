package charts

import (
	"fmt"
	"strings"

	"datalens/domain/core"
	"datalens/domain/table"
)

// ParseKind maps a chart name onto a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Bar, Line, Pie, Scatter, Heatmap, Histogram:
		return k, nil
	}
	return "", core.NewParameterError("kind", fmt.Sprintf("unknown chart kind %q", s))
}

// ParseAggregation maps an aggregation name onto an Aggregation. The empty
// string is returned unchanged so each chart can apply its own default.
func ParseAggregation(s string) (Aggregation, error) {
	a := Aggregation(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case "", Sum, Mean, Count, Min, Max:
		return a, nil
	}
	return "", core.NewParameterError("aggregation", fmt.Sprintf("unknown aggregation %q", s))
}

// Shape builds the payload for p.Kind. Unknown columns fail with
// ErrInvalidColumnReference; a column of the wrong kind or a bad option fails
// with ErrInvalidParameter.
func Shape(t *table.Table, p Params) (*Payload, error) {
	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return nil, err
	}
	p.Kind = kind

	agg, err := ParseAggregation(string(p.Aggregation))
	if err != nil {
		return nil, err
	}
	p.Aggregation = agg

	if p.Limit < 0 {
		return nil, core.NewParameterError("limit", "must not be negative")
	}
	if p.SampleSize < 0 {
		return nil, core.NewParameterError("sampleSize", "must not be negative")
	}

	switch kind {
	case Bar, Pie:
		return shapeRanked(t, p)
	case Line:
		return shapeLine(t, p)
	case Scatter:
		return shapeScatter(t, p)
	case Heatmap:
		return shapeHeatmap(t, p)
	default:
		return shapeHistogram(t, p)
	}
}

func requireKind(col *table.Column, field string, kinds ...table.Kind) error {
	for _, k := range kinds {
		if col.Kind() == k {
			return nil
		}
	}
	return core.NewParameterError(field, fmt.Sprintf("column %q is %s", col.Name(), col.Kind()))
}

// resolveX looks up the grouping column.
func resolveX(t *table.Table, p Params) (*table.Column, error) {
	if p.X == "" {
		return nil, core.NewParameterError("x", "is required")
	}
	return t.MustColumn(p.X)
}

// resolveY looks up the value columns. Every one must be numeric.
func resolveY(t *table.Table, names []string) ([]*table.Column, error) {
	cols := make([]*table.Column, 0, len(names))
	for _, name := range names {
		col, err := t.MustColumn(name)
		if err != nil {
			return nil, err
		}
		if err := requireKind(col, "y", table.KindNumeric); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}
