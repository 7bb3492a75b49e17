package usecase

import (
	"context"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/google/uuid"
)

type (
	UploadUseCase interface {
		Upload(ctx context.Context, file entity.ImageFile) (*entity.StoredObject, error)
		Get(ctx context.Context, id uuid.UUID) (*entity.StoredObject, error)
	}

	OutboxUseCase interface {
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	ThumbnailUseCase interface {
		Render(ctx context.Context, payload entity.UploadStoredPayload) (string, error)
	}
)
