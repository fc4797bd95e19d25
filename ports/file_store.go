package ports

import (
	"context"
	"io"

	"datalens/domain/dataset"
	"datalens/domain/table"
)

// FileStore persists uploaded dataset files. Store returns an unsaved
// catalog record whose FilePath points at the stored copy.
type FileStore interface {
	Store(ctx context.Context, ownerID, originalFilename string, src io.Reader) (*dataset.Dataset, error)
	Remove(path string) error
}

// TableParser reads a stored file into a typed table.
type TableParser interface {
	ReadFile(path string, ft dataset.FileType) (*table.Table, error)
}
