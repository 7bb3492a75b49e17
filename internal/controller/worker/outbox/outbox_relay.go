package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/infrastructure"
	"github.com/andreyxaxa/image-uploader/internal/usecase"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
)

type Config struct {
	PollInterval        time.Duration
	CleanupInterval     time.Duration
	MarkFailedInterval  time.Duration
	ProcessBatchTimeout time.Duration
	BatchSize           int
	MaxRetries          int
}

// OutboxRelay moves upload.stored events from the ledger to the broker.
type OutboxRelay struct {
	outbox usecase.OutboxUseCase
	es     infrastructure.EventsSender
	logger logger.Interface
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(outbox usecase.OutboxUseCase, es infrastructure.EventsSender, l logger.Interface, cfg Config) *OutboxRelay {
	return &OutboxRelay{
		outbox: outbox,
		es:     es,
		logger: l,
		cfg:    cfg,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - relay already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. publish pending events
	r.every(r.cfg.PollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.cfg.ProcessBatchTimeout)
		r.publish(batchCtx)
		batchCancel()
	})

	// 2. give up on exhausted events
	r.every(r.cfg.MarkFailedInterval, func() {
		err := r.outbox.MarkMaxRetriesAsFailed(r.ctx, r.cfg.MaxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - r.outbox.MarkMaxRetriesAsFailed")
		}
	})

	// 3. drop old processed and failed rows
	r.every(r.cfg.CleanupInterval, func() {
		err := r.outbox.CleanupOutbox(r.ctx)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - r.outbox.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) publish(ctx context.Context) {
	n, err := r.PublishBatch(ctx)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - publish")

		return
	}

	if n > 0 {
		r.logger.Debug("outbox relay published %d events", n)
	}
}

// PublishBatch sends one batch of pending events and reports how many went out.
// A failed send puts the batch back to pending with its retry count bumped.
func (r *OutboxRelay) PublishBatch(ctx context.Context) (int, error) {
	events, err := r.outbox.GetPendingEvents(ctx, r.cfg.MaxRetries, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("OutboxRelay - PublishBatch - r.outbox.GetPendingEvents: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	err = r.outbox.MarkAsProcessingBatch(ctx, events)
	if err != nil {
		return 0, fmt.Errorf("OutboxRelay - PublishBatch - r.outbox.MarkAsProcessingBatch: %w", err)
	}

	err = r.es.SendEvents(ctx, events)
	if err != nil {
		incErr := r.outbox.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - PublishBatch - r.outbox.IncrementRetryCountBatch")
		}

		return 0, fmt.Errorf("OutboxRelay - PublishBatch - r.es.SendEvents: %w", err)
	}

	err = r.outbox.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		return 0, fmt.Errorf("OutboxRelay - PublishBatch - r.outbox.MarkAsProcessedBatch: %w", err)
	}

	return len(events), nil
}

func (r *OutboxRelay) every(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

// Shutdown stops the tickers, makes one last publish attempt with ctx and
// closes the sender.
func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		r.publish(ctx)

		err := r.es.Close()
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Shutdown - r.es.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
