package dataset

import (
	"context"
	"sort"
	"sync"

	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
)

// MemoryRepository is the in-memory FileRepository used when no
// DATABASE_URL is configured, and by tests. It stores and returns deep
// copies, so concurrent readers never see a transform's in-place write.
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[core.FileID]*table.DataFile
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{files: make(map[core.FileID]*table.DataFile)}
}

func (r *MemoryRepository) Create(ctx context.Context, f *table.DataFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = f.Clone()
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id core.FileID) (*table.DataFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[id]
	if !ok {
		return nil, core.NewNotFoundError("file", id.String())
	}
	return f.Clone(), nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID core.UserID) ([]*table.DataFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var files []*table.DataFile
	for _, f := range r.files {
		if f.UserID == userID {
			files = append(files, f.Clone())
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files, nil
}

func (r *MemoryRepository) Update(ctx context.Context, f *table.DataFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[f.ID]; !ok {
		return core.NewNotFoundError("file", f.ID.String())
	}
	r.files[f.ID] = f.Clone()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id core.FileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}
