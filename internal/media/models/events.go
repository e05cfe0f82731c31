package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

type VideoStored struct {
	eventID     uuid.UUID
	videoID     uuid.UUID
	title       string
	contentType string
	size        int64
	occurredAt  time.Time
}

func NewVideoStored(v *Video, at time.Time) *VideoStored {
	return &VideoStored{
		eventID:     uuid.New(),
		videoID:     v.ID,
		title:       v.Title,
		contentType: v.ContentType,
		size:        v.Size,
		occurredAt:  at,
	}
}

func (e *VideoStored) EventID() uuid.UUID     { return e.eventID }
func (e *VideoStored) EventType() string      { return "VideoStored" }
func (e *VideoStored) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoStored) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoStored) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID     uuid.UUID `json:"event_id"`
		VideoID     uuid.UUID `json:"video_id"`
		Title       string    `json:"title"`
		ContentType string    `json:"content_type"`
		Size        int64     `json:"size"`
		OccurredAt  time.Time `json:"occurred_at"`
	}{
		EventID:     e.eventID,
		VideoID:     e.videoID,
		Title:       e.title,
		ContentType: e.contentType,
		Size:        e.size,
		OccurredAt:  e.occurredAt,
	})
}
