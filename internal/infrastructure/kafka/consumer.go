package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/image-uploader/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

type UploadEventConsumer struct {
	*consumer.Consumer
}

func NewUploadEventConsumer(c *consumer.Consumer) *UploadEventConsumer {
	return &UploadEventConsumer{c}
}

func (ec *UploadEventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.Reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("UploadEventConsumer - ReadEvent - ec.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (ec *UploadEventConsumer) CommitEvent(ctx context.Context, msg kafka.Message) error {
	err := ec.Reader.CommitMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("UploadEventConsumer - CommitEvent - ec.Reader.CommitMessages: %w", err)
	}

	return nil
}

func (ec *UploadEventConsumer) Close() error {
	err := ec.Consumer.Close()
	if err != nil {
		return fmt.Errorf("UploadEventConsumer - Close: %w", err)
	}

	return nil
}
