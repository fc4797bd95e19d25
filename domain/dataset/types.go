// Package dataset describes uploaded datasets: where the file lives and what
// it looked like when it was ingested.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"datalens/domain/core"
	"datalens/domain/table"
)

// FileType is the on-disk format of a dataset.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeJSON FileType = "json"
)

// FileTypeFromName infers the format from a file extension.
func FileTypeFromName(name string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm", ".xls":
		return FileTypeXLSX, nil
	case ".json":
		return FileTypeJSON, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, filepath.Ext(name))
}

// Dataset is the catalog record for one uploaded file.
type Dataset struct {
	ID               core.ID            `json:"id" db:"id"`
	OwnerID          string             `json:"ownerId" db:"owner_id"`
	OriginalFilename string             `json:"originalFilename" db:"original_filename"`
	FilePath         string             `json:"filePath" db:"file_path"`
	FileType         FileType           `json:"fileType" db:"file_type"`
	FileSize         int64              `json:"fileSize" db:"file_size"`
	RowCount         int                `json:"rowCount" db:"row_count"`
	ColumnCount      int                `json:"columnCount" db:"column_count"`
	Columns          []table.ColumnSpec `json:"columns" db:"-"`
	CreatedAt        time.Time          `json:"createdAt" db:"created_at"`
}

// New creates a catalog record for a stored file.
func New(ownerID, originalFilename, filePath string, size int64) (*Dataset, error) {
	ft, err := FileTypeFromName(originalFilename)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		ID:               core.NewID(),
		OwnerID:          ownerID,
		OriginalFilename: originalFilename,
		FilePath:         filePath,
		FileType:         ft,
		FileSize:         size,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Describe records the table shape observed at ingestion.
func (d *Dataset) Describe(t *table.Table) {
	d.RowCount = t.NumRows()
	d.ColumnCount = t.NumColumns()
	d.Columns = t.Specs()
}
