package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutbox struct {
	mu      sync.Mutex
	events  []*entity.OutboxEvent
	cleaned int
}

func (m *memOutbox) GetPendingEvents(_ context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range m.events {
		if e.Status == entity.Pending && e.RetryCount < maxRetries && len(out) < limit {
			out = append(out, e)
		}
	}

	return out, nil
}

func (m *memOutbox) set(events []*entity.OutboxEvent, f func(e *entity.OutboxEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range events {
		f(e)
	}
}

func (m *memOutbox) MarkAsProcessingBatch(_ context.Context, events []*entity.OutboxEvent) error {
	m.set(events, func(e *entity.OutboxEvent) { e.Status = entity.Processing })

	return nil
}

func (m *memOutbox) MarkAsProcessedBatch(_ context.Context, events []*entity.OutboxEvent) error {
	m.set(events, func(e *entity.OutboxEvent) { e.Status = entity.Processed })

	return nil
}

func (m *memOutbox) IncrementRetryCountBatch(_ context.Context, events []*entity.OutboxEvent) error {
	m.set(events, func(e *entity.OutboxEvent) {
		e.Status = entity.Pending
		e.RetryCount++
	})

	return nil
}

func (m *memOutbox) MarkMaxRetriesAsFailed(_ context.Context, maxRetries int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.events {
		if e.Status == entity.Pending && e.RetryCount >= maxRetries {
			e.Status = entity.Failed
		}
	}

	return nil
}

func (m *memOutbox) CleanupOutbox(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaned++

	return nil
}

func (m *memOutbox) statuses() []entity.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.Status, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Status)
	}

	return out
}

type fakeSender struct {
	mu     sync.Mutex
	sent   int
	err    error
	closed bool
}

func (s *fakeSender) SendEvents(_ context.Context, events []*entity.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.sent += len(events)

	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true

	return nil
}

func pending(n int) []*entity.OutboxEvent {
	events := make([]*entity.OutboxEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, &entity.OutboxEvent{
			ID:          uuid.New(),
			AggregateID: uuid.New(),
			Type:        entity.EventUploadStored,
			Status:      entity.Pending,
		})
	}

	return events
}

func testConfig() Config {
	return Config{
		PollInterval:        10 * time.Millisecond,
		CleanupInterval:     time.Hour,
		MarkFailedInterval:  10 * time.Millisecond,
		ProcessBatchTimeout: time.Second,
		BatchSize:           2,
		MaxRetries:          2,
	}
}

func TestPublishBatch(t *testing.T) {
	store := &memOutbox{events: pending(3)}
	sender := &fakeSender{}
	r := New(store, sender, logger.New("error"), testConfig())

	n, err := r.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 3, sender.sent)
	assert.Equal(t, []entity.Status{entity.Processed, entity.Processed, entity.Processed}, store.statuses())
}

func TestPublishBatchSendFailure(t *testing.T) {
	store := &memOutbox{events: pending(1)}
	r := New(store, &fakeSender{err: errors.New("broker down")}, logger.New("error"), testConfig())

	_, err := r.PublishBatch(context.Background())
	require.Error(t, err)

	assert.Equal(t, entity.Pending, store.events[0].Status)
	assert.Equal(t, 1, store.events[0].RetryCount)
}

func TestRelayGivesUpAfterMaxRetries(t *testing.T) {
	store := &memOutbox{events: pending(1)}
	sender := &fakeSender{err: errors.New("broker down")}
	r := New(store, sender, logger.New("error"), testConfig())

	require.NoError(t, r.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return store.statuses()[0] == entity.Failed
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, r.Shutdown(context.Background()))
	assert.True(t, sender.closed)
}
