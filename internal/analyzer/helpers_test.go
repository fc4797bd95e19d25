package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"datalens/domain/core"
	"datalens/domain/table"
)

func mustTable(t *testing.T, cols ...table.ColumnData) *table.Table {
	t.Helper()
	tbl, err := table.FromColumns(cols...)
	require.NoError(t, err)
	return tbl
}

// defined unwraps n, failing the test when it is undefined.
func defined(t *testing.T, n core.Number) float64 {
	t.Helper()
	v, ok := n.Value()
	require.True(t, ok, "expected a defined number")
	return v
}

func seq(from, to float64) []float64 {
	var out []float64
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
