package analyzer

import "datalens/domain/table"

// Classify partitions the table's columns by declared kind, in table order.
// A numeric column with no values is listed under Empty instead of Numeric.
func Classify(t *table.Table) Classification {
	c := Classification{
		Numeric:     []string{},
		Categorical: []string{},
		Datetime:    []string{},
		Boolean:     []string{},
		Empty:       []string{},
	}

	for _, col := range t.Columns() {
		switch col.Kind() {
		case table.KindNumeric:
			if col.IsEmpty() {
				c.Empty = append(c.Empty, col.Name())
			} else {
				c.Numeric = append(c.Numeric, col.Name())
			}
		case table.KindCategorical:
			c.Categorical = append(c.Categorical, col.Name())
		case table.KindDatetime:
			c.Datetime = append(c.Datetime, col.Name())
		case table.KindBoolean:
			c.Boolean = append(c.Boolean, col.Name())
		}
	}

	return c
}

// numericColumns returns every declared numeric column, empty ones included.
func numericColumns(t *table.Table) []*table.Column {
	var out []*table.Column
	for _, col := range t.Columns() {
		if col.Kind() == table.KindNumeric {
			out = append(out, col)
		}
	}
	return out
}
