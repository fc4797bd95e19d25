// Package loader reads stored dataset files into typed tables.
package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/ports"
)

// Loader resolves a dataset ID through the catalog and parses the file.
type Loader struct {
	repo    ports.DatasetRepository
	reader  *Reader
	dataDir string
}

// NewLoader creates a table loader. Relative file paths in the catalog are
// resolved against dataDir.
func NewLoader(repo ports.DatasetRepository, reader *Reader, dataDir string) ports.TableLoader {
	if reader == nil {
		reader = NewReader(DefaultCoercionConfig())
	}
	return &Loader{repo: repo, reader: reader, dataDir: dataDir}
}

// Load implements ports.TableLoader
func (l *Loader) Load(ctx context.Context, id core.ID) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path := ds.FilePath
	if !filepath.IsAbs(path) && l.dataDir != "" {
		path = filepath.Join(l.dataDir, path)
	}
	t, err := l.reader.ReadFile(path, ds.FileType)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
