package ports

import (
	"context"

	"datalens/domain/core"
	"datalens/domain/table"
)

// TableLoader supplies a typed table for a dataset reference. Column kinds
// must already reflect type inference.
type TableLoader interface {
	Load(ctx context.Context, id core.ID) (*table.Table, error)
}
