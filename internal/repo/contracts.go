package repo

import (
	"context"
	"io"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/google/uuid"
)

type (
	// ObjectStore is the content store: a bucket addressed by key.
	ObjectStore interface {
		Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
		Get(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
	}

	StoredObjectRepo interface {
		Create(ctx context.Context, obj *entity.StoredObject) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.StoredObject, error)
		MarkProcessed(ctx context.Context, id uuid.UUID, thumbnailKey string, at time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID) error
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Time) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
