package consumer

import (
	"context"
	"fmt"
	"time"

	pkgkafka "github.com/andreyxaxa/image-uploader/pkg/kafka"
	"github.com/segmentio/kafka-go"
)

type Option func(*Consumer)

func ConnAttempts(attempts int) Option {
	return func(c *Consumer) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *Consumer) {
		c.connTimeout = timeout
	}
}

type Consumer struct {
	connAttempts int
	connTimeout  time.Duration

	brokers []string
	groupID string
	topic   string

	Reader *kafka.Reader
}

func New(ctx context.Context, brokers []string, groupID, topic string, opts ...Option) (*Consumer, error) {
	c := &Consumer{
		connAttempts: pkgkafka.DefaultConnAttempts,
		connTimeout:  pkgkafka.DefaultConnTimeout,
		brokers:      brokers,
		groupID:      groupID,
		topic:        topic,
	}

	for _, opt := range opts {
		opt(c)
	}

	err := pkgkafka.WaitForBrokers(ctx, "Kafka Consumer", c.brokers, c.connAttempts, c.connTimeout)
	if err != nil {
		return nil, fmt.Errorf("Kafka Consumer - New: %w", err)
	}

	// upload events are small JSON documents
	c.Reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.brokers,
		GroupID:  c.groupID,
		Topic:    c.topic,
		MinBytes: 1,
		MaxBytes: 1e6,
	})

	return c, nil
}

func (c *Consumer) Close() error {
	if c.Reader != nil {
		return c.Reader.Close()
	}
	return nil
}
