package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadObserver(t *testing.T) {
	reg := prometheus.NewRegistry()

	o, err := NewUploadObserver("test", reg)
	require.NoError(t, err)

	o.RecordUpload(20*time.Millisecond, 2048, nil)
	o.RecordUpload(5*time.Millisecond, 4096, errors.New("bucket unavailable"))
	o.RecordRejection("too_large")
	o.RecordRejection("too_large")
	o.RecordRejection("invalid_type")

	assert.InDelta(t, 2048, testutil.ToFloat64(o.bytes), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(o.rejections.WithLabelValues("too_large")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(o.rejections.WithLabelValues("invalid_type")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(o.duration))
}

func TestUploadObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewUploadObserver("test", reg)
	require.NoError(t, err)
	second, err := NewUploadObserver("test", reg)
	require.NoError(t, err)

	second.RecordRejection("other")
	assert.InDelta(t, 1, testutil.ToFloat64(first.rejections.WithLabelValues("other")), 0)
}

func TestNilObserver(t *testing.T) {
	var o *UploadObserver

	assert.NotPanics(t, func() {
		o.RecordUpload(time.Second, 1, nil)
		o.RecordRejection("other")
	})
}
