package oneshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueLoadsOnceForConcurrentWaiters(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	v := New(context.Background(), func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release

		return "client", nil
	})
	require.Equal(t, NotStarted, v.State())

	const waiters = 16
	var wg sync.WaitGroup
	results := make([]string, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			val, err := v.Get(context.Background())
			assert.NoError(t, err)
			results[i] = val
		}(i)
	}

	require.Eventually(t, func() bool { return v.State() == Loading }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Ready, v.State())
	for _, r := range results {
		assert.Equal(t, "client", r)
	}
}

func TestValueFailedReleasesWaitersAndRetries(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")

	v := New(context.Background(), func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, boom
		}

		return 42, nil
	})

	_, err := v.Get(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Failed, v.State())

	val, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, Ready, v.State())
	assert.Equal(t, int32(2), calls.Load())
}

func TestValueWaiterCancelDoesNotCancelLoad(t *testing.T) {
	release := make(chan struct{})
	v := New(context.Background(), func(ctx context.Context) (int, error) {
		select {
		case <-release:
			return 7, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := v.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Loading, v.State())

	close(release)
	val, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, val)
}

func TestValueStartIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	v := New(context.Background(), func(ctx context.Context) (int, error) {
		calls.Add(1)

		return 1, nil
	})

	v.Start()
	v.Start()
	_, err := v.Get(context.Background())
	require.NoError(t, err)
	v.Start()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "ready", v.State().String())
}
