package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/romariotrain/video-stream/internal/media/models"
)

// VideoRepository stores video metadata. Create persists the events raised by
// the write together with the video when the backend supports it.
type VideoRepository interface {
	Create(ctx context.Context, v *models.Video, events ...models.DomainEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
}
