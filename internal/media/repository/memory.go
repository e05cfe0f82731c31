package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/romariotrain/video-stream/internal/media/models"
)

// MemoryRepository keeps videos for the lifetime of the process. It has no
// outbox, events passed to Create are dropped.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*models.Video
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data: make(map[uuid.UUID]*models.Video),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, v *models.Video, _ ...models.DomainEvent) error {
	if v == nil || v.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[v.ID]; exists {
		return models.ErrConflict
	}

	// Copies in and out so callers cannot mutate what is stored.
	cp := *v
	r.data[v.ID] = &cp

	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	cp := *v
	return &cp, nil
}

// List returns videos oldest first.
func (r *MemoryRepository) List(ctx context.Context) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]models.Video, 0, len(r.data))
	for _, v := range r.data {
		out = append(out, *v)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Video) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}
