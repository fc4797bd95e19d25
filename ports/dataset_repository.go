package ports

import (
	"context"

	"datalens/domain/core"
	"datalens/domain/dataset"
)

// DatasetRepository defines the interface for dataset catalog operations
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error)
	List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error)
	Delete(ctx context.Context, id core.ID) error
}
