package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultContentType = "application/octet-stream"

// Video is the metadata the store keeps for an uploaded file.
type Video struct {
	ID          uuid.UUID `db:"id" json:"videoId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ContentType string    `db:"content_type" json:"contentType"`
	FilePath    string    `db:"file_path" json:"filePath"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
