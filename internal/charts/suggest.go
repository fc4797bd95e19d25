package charts

import (
	"datalens/domain/table"
)

// Suggest recommends a chart for an x column kind and an optional y column
// kind. It only looks at the kinds, never at the data.
func Suggest(x table.Kind, y *table.Kind) Suggestion {
	if y == nil {
		switch x {
		case table.KindNumeric:
			return Suggestion{Kind: Histogram, Reasoning: "Single numeric column - distribution analysis", Recommended: true}
		case table.KindCategorical, table.KindBoolean:
			return Suggestion{Kind: Pie, Reasoning: "Single categorical column - proportion analysis", Recommended: true}
		}
		return Suggestion{Kind: Bar, Reasoning: "Default visualization", Recommended: false}
	}

	if *y == table.KindNumeric {
		switch x {
		case table.KindDatetime:
			return Suggestion{Kind: Line, Reasoning: "Time series data - trend analysis", Recommended: true}
		case table.KindCategorical, table.KindBoolean:
			return Suggestion{Kind: Bar, Reasoning: "Categorical vs numeric - comparison analysis", Recommended: true}
		case table.KindNumeric:
			return Suggestion{Kind: Scatter, Reasoning: "Two numeric columns - correlation analysis", Recommended: true}
		}
	}
	return Suggestion{Kind: Bar, Reasoning: "Default visualization", Recommended: false}
}

// SuggestForColumns resolves column kinds and calls Suggest. An empty y
// means a single-column chart.
func SuggestForColumns(t *table.Table, x, y string) (Suggestion, error) {
	xc, err := t.MustColumn(x)
	if err != nil {
		return Suggestion{}, err
	}
	if y == "" {
		return Suggest(xc.Kind(), nil), nil
	}
	yc, err := t.MustColumn(y)
	if err != nil {
		return Suggestion{}, err
	}
	yk := yc.Kind()
	return Suggest(xc.Kind(), &yk), nil
}
