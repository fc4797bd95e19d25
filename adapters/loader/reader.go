package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/table"
)

const utf8BOM = "\ufeff"

// rawTable is the untyped grid produced by the format readers.
type rawTable struct {
	header []string
	rows   [][]string
}

// Reader turns CSV, XLSX and JSON files into typed tables.
type Reader struct {
	coercer *TypeCoercer
}

// NewReader creates a reader with the given coercion rules
func NewReader(config CoercionConfig) *Reader {
	return &Reader{coercer: NewTypeCoercer(config)}
}

// ReadFile opens path and parses it as the given file type.
func (r *Reader) ReadFile(path string, ft dataset.FileType) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()
	return r.Read(f, ft)
}

// Read parses src as the given file type.
func (r *Reader) Read(src io.Reader, ft dataset.FileType) (*table.Table, error) {
	var (
		raw *rawTable
		err error
	)
	switch ft {
	case dataset.FileTypeCSV:
		raw, err = readCSV(src)
	case dataset.FileTypeXLSX:
		raw, err = readXLSX(src)
	case dataset.FileTypeJSON:
		raw, err = readJSON(src)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ft)
	}
	if err != nil {
		return nil, err
	}
	return r.build(raw)
}

func readCSV(src io.Reader) (*rawTable, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", core.ErrUnsupportedFormat, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv file has no header row", core.ErrInvalidTable)
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return &rawTable{header: header, rows: records[1:]}, nil
}

// readXLSX reads the first sheet; the first row is the header.
func readXLSX(src io.Reader) (*rawTable, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", core.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrInvalidTable)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", core.ErrInvalidTable, sheets[0])
	}
	return &rawTable{header: rows[0], rows: rows[1:]}, nil
}

// readJSON accepts an array of records or an object of column arrays.
// Column order follows first appearance in the document.
func readJSON(src io.Reader) (*rawTable, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte(utf8BOM)))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: json document is empty", core.ErrInvalidTable)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", core.ErrUnsupportedFormat)
	}

	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsArray():
		return readJSONRecords(doc)
	case doc.IsObject():
		return readJSONColumns(doc)
	}
	return nil, fmt.Errorf("%w: json must be an array of records or an object of columns", core.ErrUnsupportedFormat)
}

func readJSONRecords(doc gjson.Result) (*rawTable, error) {
	raw := &rawTable{}
	index := make(map[string]int)
	var cells []map[int]string
	var err error

	doc.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			err = fmt.Errorf("record %d is not an object", len(cells))
			return false
		}
		row := make(map[int]string)
		rec.ForEach(func(key, value gjson.Result) bool {
			pos, ok := index[key.Str]
			if !ok {
				pos = len(raw.header)
				index[key.Str] = pos
				raw.header = append(raw.header, key.Str)
			}
			var s string
			if s, err = jsonScalar(value); err != nil {
				err = fmt.Errorf("record %d field %q: %w", len(cells), key.Str, err)
				return false
			}
			row[pos] = s
			return true
		})
		cells = append(cells, row)
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedFormat, err)
	}

	raw.rows = make([][]string, len(cells))
	for i, row := range cells {
		out := make([]string, len(raw.header))
		for pos, s := range row {
			out[pos] = s
		}
		raw.rows[i] = out
	}
	return raw, nil
}

func readJSONColumns(doc gjson.Result) (*rawTable, error) {
	raw := &rawTable{}
	var columns [][]string
	var err error

	doc.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			err = fmt.Errorf("column %q is not an array", key.Str)
			return false
		}
		var col []string
		value.ForEach(func(_, item gjson.Result) bool {
			var s string
			if s, err = jsonScalar(item); err != nil {
				err = fmt.Errorf("column %q row %d: %w", key.Str, len(col), err)
				return false
			}
			col = append(col, s)
			return true
		})
		raw.header = append(raw.header, key.Str)
		columns = append(columns, col)
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedFormat, err)
	}

	n := 0
	for _, col := range columns {
		n = max(n, len(col))
	}
	raw.rows = make([][]string, n)
	for i := range raw.rows {
		row := make([]string, len(columns))
		for j, col := range columns {
			if i < len(col) {
				row[j] = col[i]
			}
		}
		raw.rows[i] = row
	}
	return raw, nil
}

// jsonScalar renders a JSON scalar as a raw cell. Numbers keep their source
// text; nested values are rejected.
func jsonScalar(v gjson.Result) (string, error) {
	switch v.Type {
	case gjson.Null:
		return "", nil
	case gjson.String:
		return v.Str, nil
	case gjson.Number:
		return v.Raw, nil
	case gjson.True, gjson.False:
		return strconv.FormatBool(v.Bool()), nil
	}
	return "", fmt.Errorf("nested values are not supported")
}

// build infers a kind per column and coerces every cell. Short rows are
// padded with missing cells.
func (r *Reader) build(raw *rawTable) (*table.Table, error) {
	names := headerNames(raw.header)
	width := len(names)
	for _, row := range raw.rows {
		width = max(width, len(row))
	}
	for len(names) < width {
		names = append(names, "column_"+strconv.Itoa(len(names)+1))
	}
	names = dedupe(names)

	columns := make([][]string, width)
	for j := range columns {
		col := make([]string, len(raw.rows))
		for i, row := range raw.rows {
			if j < len(row) {
				col[i] = row[j]
			}
		}
		columns[j] = col
	}

	specs := make([]table.ColumnSpec, width)
	for j, col := range columns {
		specs[j] = table.ColumnSpec{Name: names[j], Kind: r.coercer.Analyze(col).RecommendedKind}
	}

	rows := make([][]table.Value, len(raw.rows))
	for i := range raw.rows {
		vals := make([]table.Value, width)
		for j, spec := range specs {
			vals[j] = r.coercer.Coerce(columns[j][i], spec.Kind)
		}
		rows[i] = vals
	}
	return table.New(specs, rows)
}

func headerNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		names[i] = h
	}
	return names
}

// dedupe suffixes repeated header names with .1, .2 and so on.
func dedupe(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	out := make([]string, len(names))
	for i, n := range names {
		count := seen[n]
		seen[n] = count + 1
		if count == 0 {
			out[i] = n
			continue
		}
		candidate := fmt.Sprintf("%s.%d", n, count)
		for taken[candidate] {
			count++
			candidate = fmt.Sprintf("%s.%d", n, count)
		}
		seen[n] = count + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}
