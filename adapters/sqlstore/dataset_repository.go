// Package sqlstore keeps the dataset catalog in a SQL database. Queries are
// written with ? placeholders and rebound for the connected driver, so the
// same repository serves PostgreSQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/table"
	"datalens/ports"
)

// datasetRow mirrors the datasets table. Columns are stored as JSON.
type datasetRow struct {
	ID               string    `db:"id"`
	OwnerID          string    `db:"owner_id"`
	OriginalFilename string    `db:"original_filename"`
	FilePath         string    `db:"file_path"`
	FileType         string    `db:"file_type"`
	FileSize         int64     `db:"file_size"`
	RowCount         int       `db:"row_count"`
	ColumnCount      int       `db:"column_count"`
	Columns          []byte    `db:"columns"`
	CreatedAt        time.Time `db:"created_at"`
}

const datasetColumns = `id, owner_id, original_filename, file_path, file_type, file_size,
	row_count, column_count, columns, created_at`

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Create inserts a new dataset into the catalog
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	row, err := toRow(ds)
	if err != nil {
		return err
	}

	query := `INSERT INTO datasets (` + datasetColumns + `) VALUES (
		:id, :owner_id, :original_filename, :file_path, :file_type, :file_size,
		:row_count, :column_count, :columns, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	var row datasetRow
	query := `SELECT ` + datasetColumns + ` FROM datasets WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return fromRow(row)
}

// List returns datasets newest first
func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []datasetRow
	query := `SELECT ` + datasetColumns + ` FROM datasets ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	out := make([]*dataset.Dataset, 0, len(rows))
	for _, row := range rows {
		ds, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// Delete removes a dataset record
func (r *datasetRepository) Delete(ctx context.Context, id core.ID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM datasets WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
	}
	return nil
}

func toRow(ds *dataset.Dataset) (datasetRow, error) {
	cols, err := json.Marshal(ds.Columns)
	if err != nil {
		return datasetRow{}, fmt.Errorf("failed to marshal columns: %w", err)
	}
	return datasetRow{
		ID:               ds.ID.String(),
		OwnerID:          ds.OwnerID,
		OriginalFilename: ds.OriginalFilename,
		FilePath:         ds.FilePath,
		FileType:         string(ds.FileType),
		FileSize:         ds.FileSize,
		RowCount:         ds.RowCount,
		ColumnCount:      ds.ColumnCount,
		Columns:          cols,
		CreatedAt:        ds.CreatedAt,
	}, nil
}

func fromRow(row datasetRow) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		ID:               core.ID(row.ID),
		OwnerID:          row.OwnerID,
		OriginalFilename: row.OriginalFilename,
		FilePath:         row.FilePath,
		FileType:         dataset.FileType(row.FileType),
		FileSize:         row.FileSize,
		RowCount:         row.RowCount,
		ColumnCount:      row.ColumnCount,
		CreatedAt:        row.CreatedAt.UTC(),
	}
	if len(row.Columns) > 0 {
		var cols []table.ColumnSpec
		if err := json.Unmarshal(row.Columns, &cols); err != nil {
			return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
		}
		ds.Columns = cols
	}
	return ds, nil
}
