package entity

import (
	"time"

	"github.com/google/uuid"
)

type StoredObject struct {
	ID uuid.UUID `json:"id"`

	Key          string  `json:"key"`
	URL          string  `json:"url"`
	ThumbnailKey *string `json:"thumbnail_key,omitempty"`

	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Status       Status `json:"status"` // stored, processed, failed

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
