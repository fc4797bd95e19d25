package loader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datalens/adapters/filestore"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/table"
)

func newReader() *Reader { return NewReader(DefaultCoercionConfig()) }

func column(t *testing.T, tbl *table.Table, name string) *table.Column {
	t.Helper()
	c, err := tbl.MustColumn(name)
	require.NoError(t, err)
	return c
}

func TestReadCSV_InfersKinds(t *testing.T) {
	src := "\ufeffregion,units,price,date,active\n" +
		"North,3,9.99,2024-01-01,true\n" +
		"South,,4.50,2024-01-02,false\n" +
		"North,5,NA,2024-01-03,true\n"

	tbl, err := newReader().Read(strings.NewReader(src), dataset.FileTypeCSV)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())

	assert.Equal(t, []table.ColumnSpec{
		{Name: "region", Kind: table.KindCategorical},
		{Name: "units", Kind: table.KindNumeric},
		{Name: "price", Kind: table.KindNumeric},
		{Name: "date", Kind: table.KindDatetime},
		{Name: "active", Kind: table.KindBoolean},
	}, tbl.Specs())

	units := column(t, tbl, "units")
	assert.Equal(t, 1, units.MissingCount())
	price := column(t, tbl, "price")
	assert.True(t, price.At(2).IsMissing())

	ts, ok := column(t, tbl, "date").At(1).Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ts)
}

func TestReadCSV_RaggedRowsAndHeaders(t *testing.T) {
	src := "a,,a\n1,2,3,4\n5\n"
	tbl, err := newReader().Read(strings.NewReader(src), dataset.FileTypeCSV)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range tbl.Specs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "column_2", "a.1", "column_4"}, names)
	assert.Equal(t, 1, column(t, tbl, "column_4").PresentCount())
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := newReader().Read(strings.NewReader(""), dataset.FileTypeCSV)
	assert.ErrorIs(t, err, core.ErrInvalidTable)
}

func TestReadJSON_RecordsKeepKeyOrder(t *testing.T) {
	src := `[
		{"zeta": 1, "alpha": "x", "mid": true},
		{"alpha": "y", "zeta": 2.5, "extra": null},
		{"zeta": null, "alpha": "x", "mid": false, "extra": "late"}
	]`
	tbl, err := newReader().Read(strings.NewReader(src), dataset.FileTypeJSON)
	require.NoError(t, err)

	var names []string
	for _, s := range tbl.Specs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid", "extra"}, names)
	assert.Equal(t, table.KindNumeric, column(t, tbl, "zeta").Kind())
	assert.Equal(t, table.KindBoolean, column(t, tbl, "mid").Kind())
	assert.Equal(t, 1, column(t, tbl, "zeta").MissingCount())
	assert.Equal(t, 1, column(t, tbl, "mid").MissingCount())
}

func TestReadJSON_Columns(t *testing.T) {
	src := `{"b": [1, 2, 3], "a": ["x", "y"]}`
	tbl, err := newReader().Read(strings.NewReader(src), dataset.FileTypeJSON)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, "b", tbl.Specs()[0].Name)
	assert.True(t, column(t, tbl, "a").At(2).IsMissing())
}

func TestReadJSON_Rejects(t *testing.T) {
	for _, src := range []string{`"text"`, `[{"a": {"nested": 1}}]`, `[1, 2]`, ``} {
		_, err := newReader().Read(strings.NewReader(src), dataset.FileTypeJSON)
		assert.Error(t, err, src)
	}
}

func TestReadXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"category", "amount"},
		{"Books", 12.5},
		{"Games", 30},
		{"Books", nil},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tbl, err := newReader().Read(bytes.NewReader(buf.Bytes()), dataset.FileTypeXLSX)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, table.KindNumeric, column(t, tbl, "amount").Kind())
	assert.Equal(t, []float64{12.5, 30}, column(t, tbl, "amount").Floats())
}

func TestReadXLSX_Garbage(t *testing.T) {
	_, err := newReader().Read(strings.NewReader("not a zip"), dataset.FileTypeXLSX)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestLoader_ResolvesThroughCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "q.csv"), []byte("x,y\n1,2\n3,4\n"), 0o644))
	cat, err := filestore.NewCatalog(dir)
	require.NoError(t, err)

	l := NewLoader(cat, nil, dir)
	tbl, err := l.Load(context.Background(), core.ID("q.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())

	_, err = l.Load(context.Background(), core.ID("missing.csv"))
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)
}

func TestReadJSON_NumbersKeepSourceText(t *testing.T) {
	src := `[{"price": 1.50, "code": "007", "qty": 1e3}, {"price": 2, "code": "010", "qty": 20}]`
	tbl, err := newReader().Read(strings.NewReader(src), dataset.FileTypeJSON)
	require.NoError(t, err)

	qty, ok := column(t, tbl, "qty").At(0).Float()
	require.True(t, ok)
	assert.Equal(t, 1000.0, qty)
	assert.Equal(t, table.KindNumeric, column(t, tbl, "price").Kind())
}

func TestReadJSON_Malformed(t *testing.T) {
	_, err := newReader().Read(strings.NewReader(`[{"a": 1},`), dataset.FileTypeJSON)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}
