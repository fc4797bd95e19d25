package analyzer

import (
	"strconv"
	"strings"

	"datalens/domain/core"
	"datalens/domain/table"
)

// Overview reports the shape and data quality of a table.
func Overview(t *table.Table) DatasetOverview {
	cls := Classify(t)
	rows := t.NumRows()

	o := DatasetOverview{
		TotalRows:           rows,
		TotalColumns:        t.NumColumns(),
		NumericColumns:      len(cls.Numeric) + len(cls.Empty),
		CategoricalColumns:  len(cls.Categorical),
		DatetimeColumns:     len(cls.Datetime),
		BooleanColumns:      len(cls.Boolean),
		EmptyNumericColumns: len(cls.Empty),
		Columns:             make([]ColumnProfile, 0, t.NumColumns()),
	}

	for _, col := range t.Columns() {
		unique := make(map[string]struct{})
		for i := 0; i < col.Len(); i++ {
			if v := col.At(i); !v.IsMissing() {
				unique[v.Label()] = struct{}{}
			}
		}
		o.MissingCells += col.MissingCount()
		o.Columns = append(o.Columns, ColumnProfile{
			Name:         col.Name(),
			Kind:         col.Kind(),
			MissingCount: col.MissingCount(),
			UniqueCount:  len(unique),
		})
	}

	o.DuplicateRows = countDuplicateRows(t)
	o.MissingPercentage = percentage(o.MissingCells, rows*t.NumColumns())
	if pct, ok := o.MissingPercentage.Value(); ok {
		o.Completeness = core.Defined(100 - pct)
	}
	o.Uniqueness = percentage(rows-o.DuplicateRows, rows)

	return o
}

// countDuplicateRows counts rows whose full label tuple repeats an earlier row.
func countDuplicateRows(t *table.Table) int {
	cols := t.Columns()
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	var key strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		key.Reset()
		for _, col := range cols {
			v := col.At(i)
			if v.IsMissing() {
				key.WriteByte('-')
				continue
			}
			label := v.Label()
			key.WriteString(strconv.Itoa(len(label)))
			key.WriteByte(':')
			key.WriteString(label)
		}
		k := key.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}
