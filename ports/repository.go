// Package ports defines the interfaces between the application services
// and their infrastructure adapters.
package ports

import (
	"context"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
)

// FileRepository stores and retrieves DataFile records keyed by an
// opaque user identity. Implementations must persist the serialized
// matrix content so a file survives a restart.
type FileRepository interface {
	Create(ctx context.Context, f *table.DataFile) error
	GetByID(ctx context.Context, id core.FileID) (*table.DataFile, error)
	ListByUser(ctx context.Context, userID core.UserID) ([]*table.DataFile, error)
	Update(ctx context.Context, f *table.DataFile) error
	Delete(ctx context.Context, id core.FileID) error
}
