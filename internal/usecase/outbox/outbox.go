package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/internal/repo"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/google/uuid"
)

type OutboxUseCase struct {
	repo      repo.OutboxRepo
	retention time.Duration

	logger logger.Interface
	now    func() time.Time
}

func New(r repo.OutboxRepo, retention time.Duration, l logger.Interface) *OutboxUseCase {
	return &OutboxUseCase{
		repo:      r,
		retention: retention,
		logger:    l,
		now:       time.Now,
	}
}

func (uc *OutboxUseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.repo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("OutboxUseCase - GetPendingEvents - uc.repo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *OutboxUseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.repo.MarkAsProcessingBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkAsProcessingBatch - uc.repo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *OutboxUseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.repo.MarkAsProcessedBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkAsProcessedBatch - uc.repo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *OutboxUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.repo.IncrementRetryCountBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - IncrementRetryCountBatch - uc.repo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *OutboxUseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.repo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkMaxRetriesAsFailed - uc.repo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

// CleanupOutbox deletes processed and failed events older than the retention.
func (uc *OutboxUseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.repo.DeleteOldProcessedAndFailed(ctx, uc.now().Add(-uc.retention))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - CleanupOutbox - uc.repo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old outbox events, count = %d", count)
	}

	return nil
}

func ids(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}
