package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/video-stream/internal/media/models"
)

type VideoResponse struct {
	ID          uuid.UUID `json:"videoId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func toVideoResponse(v *models.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		ContentType: v.ContentType,
		Size:        v.Size,
		CreatedAt:   v.CreatedAt,
	}
}
