package infrastructure

import (
	"context"

	"github.com/andreyxaxa/image-uploader/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	ImageProcessor interface {
		// Thumbnail returns the encoded thumbnail and its content type.
		Thumbnail(ctx context.Context, contentType string, data []byte) ([]byte, string, error)
	}
)
