package entity

import (
	"time"

	"github.com/google/uuid"
)

const EventUploadStored = "upload.stored"

type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID uuid.UUID  `json:"aggregate_id"` // StoredObject.ID
	Type        string     `json:"type"`
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}

// UploadStoredPayload is the body of an upload.stored event.
type UploadStoredPayload struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
}
