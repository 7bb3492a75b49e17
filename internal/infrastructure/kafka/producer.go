package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
)

// UploadEventProducer publishes outbox events keyed by upload id, so every
// event of one upload lands on the same partition.
type UploadEventProducer struct {
	*producer.Producer
	topic string
}

func NewUploadEventProducer(p *producer.Producer, topic string) *UploadEventProducer {
	return &UploadEventProducer{
		Producer: p,
		topic:    topic,
	}
}

func (ep *UploadEventProducer) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	msgs := Messages(ep.topic, events)
	if len(msgs) == 0 {
		return nil
	}

	err := ep.Writer.WriteMessages(ctx, msgs...)
	if err != nil {
		return fmt.Errorf("UploadEventProducer - SendEvents - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *UploadEventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("UploadEventProducer - Close: %w", err)
	}

	return nil
}

func Messages(topic string, events []*entity.OutboxEvent) []kafka.Message {
	msgs := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: HeaderEventID, Value: []byte(event.ID.String())},
				{Key: HeaderEventType, Value: []byte(event.Type)},
			},
		})
	}

	return msgs
}

// EventType reads the event_type header, empty when missing.
func EventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == HeaderEventType {
			return string(h.Value)
		}
	}

	return ""
}
