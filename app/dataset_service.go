package app

import (
	"context"
	"fmt"
	"io"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal"
	"datalens/ports"
)

// DatasetService manages the dataset catalog: uploads, listing and removal.
type DatasetService struct {
	repo     ports.DatasetRepository
	files    ports.FileStore
	parser   ports.TableParser
	analysis *AnalysisService
	logger   *internal.Logger
}

// NewDatasetService wires a catalog service. analysis may be nil.
func NewDatasetService(repo ports.DatasetRepository, files ports.FileStore, parser ports.TableParser, analysis *AnalysisService, logger *internal.Logger) *DatasetService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DatasetService{
		repo:     repo,
		files:    files,
		parser:   parser,
		analysis: analysis,
		logger:   logger.Named("datasets"),
	}
}

// Upload stores src, parses it once to record its shape and adds it to the
// catalog. A file that cannot be parsed is removed again.
func (s *DatasetService) Upload(ctx context.Context, ownerID, filename string, src io.Reader) (*dataset.Dataset, error) {
	if _, err := dataset.FileTypeFromName(filename); err != nil {
		return nil, err
	}
	ds, err := s.files.Store(ctx, ownerID, filename, src)
	if err != nil {
		return nil, err
	}

	t, err := s.parser.ReadFile(ds.FilePath, ds.FileType)
	if err != nil {
		s.discard(ds)
		return nil, err
	}
	ds.Describe(t)

	if err := s.repo.Create(ctx, ds); err != nil {
		s.discard(ds)
		return nil, fmt.Errorf("failed to record dataset: %w", err)
	}
	s.logger.Info("uploaded %s as %s (%d rows, %d columns)", ds.OriginalFilename, ds.ID, ds.RowCount, ds.ColumnCount)
	return ds, nil
}

// Get returns one catalog record.
func (s *DatasetService) Get(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns catalog records newest first.
func (s *DatasetService) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	return s.repo.List(ctx, limit, offset)
}

// Delete removes the record, the stored file and any cached results.
func (s *DatasetService) Delete(ctx context.Context, id core.ID) error {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(ds)
	if s.analysis != nil {
		s.analysis.Invalidate(id)
	}
	s.logger.Info("deleted dataset %s", id)
	return nil
}

func (s *DatasetService) discard(ds *dataset.Dataset) {
	if err := s.files.Remove(ds.FilePath); err != nil {
		s.logger.Warn("failed to remove %s: %v", ds.FilePath, err)
	}
}
