package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/domain/core"
	"datalens/domain/table"
)

func TestFileTypeFromName(t *testing.T) {
	ft, err := FileTypeFromName("Sales.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FileTypeXLSX, ft)

	ft, err = FileTypeFromName("data.json")
	require.NoError(t, err)
	assert.Equal(t, FileTypeJSON, ft)

	_, err = FileTypeFromName("notes.txt")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestNewAndDescribe(t *testing.T) {
	ds, err := New("alice", "sales.csv", "/data/x.csv", 120)
	require.NoError(t, err)
	assert.False(t, ds.ID.IsEmpty())
	assert.Equal(t, FileTypeCSV, ds.FileType)

	tbl, err := table.FromColumns(table.NumericColumn("a", 1, 2), table.TextColumn("b", "x", "y"))
	require.NoError(t, err)
	ds.Describe(tbl)
	assert.Equal(t, 2, ds.RowCount)
	assert.Equal(t, 2, ds.ColumnCount)
	assert.Equal(t, table.KindCategorical, ds.Columns[1].Kind)
}
