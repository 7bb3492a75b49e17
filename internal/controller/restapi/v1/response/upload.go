package response

import (
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
)

type Upload struct {
	Success  bool   `json:"success" example:"true"`
	URL      string `json:"url" example:"https://images.example.com/1718000000123-k3j9x0a1b2c4d5e6f7g8h9.png"`
	Filename string `json:"filename" example:"1718000000123-k3j9x0a1b2c4d5e6f7g8h9.png"`
}

type UploadStatus struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	ContentType  string  `json:"content_type"`
	Size         int64   `json:"size"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
}

// NewUploadStatus renders a ledger row. thumbnailURL maps a thumbnail key to
// its public URL.
func NewUploadStatus(obj *entity.StoredObject, thumbnailURL func(key string) string) UploadStatus {
	resp := UploadStatus{
		ID:          obj.ID.String(),
		Filename:    obj.Key,
		URL:         obj.URL,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		Status:      string(obj.Status),
		CreatedAt:   obj.CreatedAt.Format(time.RFC3339),
	}

	if obj.ThumbnailKey != nil {
		resp.ThumbnailURL = thumbnailURL(*obj.ThumbnailKey)
	}

	if obj.ProcessedAt != nil {
		at := obj.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &at
	}

	return resp
}
