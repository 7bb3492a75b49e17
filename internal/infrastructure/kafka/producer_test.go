package kafka

import (
	"testing"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	event := &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: uuid.New(),
		Type:        entity.EventUploadStored,
		Payload:     []byte(`{"key":"1-a.png"}`),
	}

	msgs := Messages("uploads", []*entity.OutboxEvent{event})
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, "uploads", msg.Topic)
	assert.Equal(t, event.AggregateID.String(), string(msg.Key))
	assert.Equal(t, event.Payload, msg.Value)
	assert.Equal(t, entity.EventUploadStored, EventType(msg))
}

func TestMessagesEmpty(t *testing.T) {
	assert.Empty(t, Messages("uploads", nil))
}
