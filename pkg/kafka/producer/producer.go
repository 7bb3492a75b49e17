package producer

import (
	"context"
	"fmt"
	"time"

	pkgkafka "github.com/andreyxaxa/image-uploader/pkg/kafka"
	"github.com/segmentio/kafka-go"
)

type Option func(*Producer)

func ConnAttempts(attempts int) Option {
	return func(p *Producer) {
		p.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.connTimeout = timeout
	}
}

func BatchTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.batchTimeout = timeout
	}
}

type Producer struct {
	connAttempts int
	connTimeout  time.Duration
	batchTimeout time.Duration

	brokers []string
	Writer  *kafka.Writer
}

func New(ctx context.Context, brokers []string, opts ...Option) (*Producer, error) {
	p := &Producer{
		connAttempts: pkgkafka.DefaultConnAttempts,
		connTimeout:  pkgkafka.DefaultConnTimeout,
		batchTimeout: 50 * time.Millisecond,
		brokers:      brokers,
	}

	for _, opt := range opts {
		opt(p)
	}

	err := pkgkafka.WaitForBrokers(ctx, "Kafka Producer", p.brokers, p.connAttempts, p.connTimeout)
	if err != nil {
		return nil, fmt.Errorf("Kafka Producer - New: %w", err)
	}

	p.Writer = &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: p.batchTimeout,
	}

	return p, nil
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}

	return nil
}
