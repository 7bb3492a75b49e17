package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	kafkapc "github.com/andreyxaxa/image-uploader/internal/infrastructure/kafka"
	"github.com/andreyxaxa/image-uploader/internal/usecase"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type EventReader interface {
	ReadEvent(ctx context.Context) (kafka.Message, error)
	CommitEvent(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaController consumes upload.stored events and renders thumbnails with a
// fixed pool of workers. A message is committed only after it was handled.
type KafkaController struct {
	thumbs usecase.ThumbnailUseCase
	er     EventReader
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	thumbs usecase.ThumbnailUseCase,
	er EventReader,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	if workers < 1 {
		workers = 1
	}

	return &KafkaController{
		thumbs:         thumbs,
		er:             er,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				msg, err := c.er.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.er.ReadEvent")
					}
					continue
				}

				select {
				case tasks <- msg:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) handle(ctx context.Context, msg kafka.Message) error {
	// events of other types share the topic; nothing to do for them
	if t := kafkapc.EventType(msg); t != "" && t != entity.EventUploadStored {
		return nil
	}

	var payload entity.UploadStoredPayload
	err := json.Unmarshal(msg.Value, &payload)
	if err != nil {
		// a malformed event never becomes valid; commit it and move on
		c.logger.Warn("KafkaController - handle - dropping malformed event at offset %d: %v", msg.Offset, err)

		return nil
	}

	thumbKey, err := c.thumbs.Render(ctx, payload)
	if err != nil {
		return fmt.Errorf("KafkaController - handle - c.thumbs.Render: %w", err)
	}

	if thumbKey != "" {
		c.logger.Debug("thumbnail stored, id=%s, key=%s", payload.ID, thumbKey)
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for msg := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			err := c.handle(processCtx, msg)
			processCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.handle")

				return
			}

			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.er.CommitEvent(commitCtx, msg)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.er.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		err := c.er.Close()
		if err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.er.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
