package app

import (
	"context"
	"fmt"
	"runtime"

	"github.com/andreyxaxa/image-uploader/config"
	kafkactrl "github.com/andreyxaxa/image-uploader/internal/controller/kafka"
	"github.com/andreyxaxa/image-uploader/internal/controller/worker/outbox"
	infrakafka "github.com/andreyxaxa/image-uploader/internal/infrastructure/kafka"
	"github.com/andreyxaxa/image-uploader/internal/infrastructure/processor"
	"github.com/andreyxaxa/image-uploader/internal/repo"
	"github.com/andreyxaxa/image-uploader/internal/repo/persistent"
	outboxuc "github.com/andreyxaxa/image-uploader/internal/usecase/outbox"
	"github.com/andreyxaxa/image-uploader/internal/usecase/thumbnail"
	"github.com/andreyxaxa/image-uploader/pkg/kafka/consumer"
	"github.com/andreyxaxa/image-uploader/pkg/kafka/producer"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/andreyxaxa/image-uploader/pkg/postgres"
)

// pipeline holds the stateful side of the service: the upload ledger, the
// outbox relay that publishes upload.stored events and the thumbnail consumer.
type pipeline struct {
	pg      *postgres.Postgres
	objects *persistent.StoredObjectRepo
	outbox  *persistent.OutboxRepo

	relay      *outbox.OutboxRelay
	controller *kafkactrl.KafkaController
}

func newPipeline(ctx context.Context, cfg *config.Config, store repo.ObjectStore, l logger.Interface) (*pipeline, error) {
	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		return nil, fmt.Errorf("app - newPipeline - postgres.New: %w", err)
	}

	p := &pipeline{
		pg:      pg,
		objects: persistent.NewStoredObjectRepo(pg),
		outbox:  persistent.NewOutboxRepo(pg),
	}

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		pg.Close()

		return nil, fmt.Errorf("app - newPipeline - producer.New: %w", err)
	}

	// Outbox Relay Worker
	p.relay = outbox.New(
		outboxuc.New(p.outbox, cfg.OutboxRelay.CleanupRetention, l),
		infrakafka.NewUploadEventProducer(kafkaProducer, cfg.Kafka.Topic),
		l,
		outbox.Config{
			PollInterval:        cfg.OutboxRelay.PollInterval,
			CleanupInterval:     cfg.OutboxRelay.CleanupInterval,
			MarkFailedInterval:  cfg.OutboxRelay.MarkFailedInterval,
			ProcessBatchTimeout: cfg.OutboxRelay.ProcessBatchTimeout,
			BatchSize:           cfg.OutboxRelay.BatchSize,
			MaxRetries:          cfg.OutboxRelay.MaxRetries,
		},
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		_ = kafkaProducer.Close()
		pg.Close()

		return nil, fmt.Errorf("app - newPipeline - consumer.New: %w", err)
	}

	workers := cfg.KafkaController.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Kafka as Controller
	p.controller = kafkactrl.New(
		thumbnail.New(store, p.objects, processor.New(cfg.Thumbnail.Width, cfg.Thumbnail.Height), cfg.KafkaController.CPUTimeout, l),
		infrakafka.NewUploadEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		workers,
	)

	return p, nil
}

func (p *pipeline) start(ctx context.Context) error {
	err := p.relay.Start(ctx)
	if err != nil {
		return fmt.Errorf("app - pipeline - start - p.relay.Start: %w", err)
	}

	err = p.controller.Start(ctx)
	if err != nil {
		return fmt.Errorf("app - pipeline - start - p.controller.Start: %w", err)
	}

	return nil
}

func (p *pipeline) shutdown(ctx context.Context, cfg *config.Config, l logger.Interface) {
	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err := p.relay.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - pipeline - shutdown - p.relay.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = p.controller.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - pipeline - shutdown - p.controller.Shutdown: %w", err))
	}
}

func (p *pipeline) close() {
	p.pg.Close()
}
