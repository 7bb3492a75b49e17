package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UploadObserver exports upload metrics to Prometheus.
type UploadObserver struct {
	duration   *prometheus.HistogramVec
	bytes      prometheus.Counter
	rejections *prometheus.CounterVec
}

// NewUploadObserver registers the upload metrics on reg. Collectors that are
// already registered under the same name are reused.
func NewUploadObserver(namespace string, reg prometheus.Registerer) (*UploadObserver, error) {
	if namespace == "" {
		namespace = "image_uploader"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_duration_seconds",
		Help:      "Latency of object store writes, by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	bytes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative payload size successfully written to object storage.",
	}))
	if err != nil {
		return nil, err
	}

	rejections, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_rejections_total",
		Help:      "Uploads refused before reaching storage, by reason.",
	}, []string{"reason"}))
	if err != nil {
		return nil, err
	}

	return &UploadObserver{
		duration:   duration,
		bytes:      bytes,
		rejections: rejections,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return c, fmt.Errorf("metrics - register: %w", err)
}

func (o *UploadObserver) RecordUpload(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}

	if err != nil {
		o.duration.WithLabelValues("error").Observe(duration.Seconds())

		return
	}

	o.duration.WithLabelValues("ok").Observe(duration.Seconds())
	o.bytes.Add(float64(sizeBytes))
}

func (o *UploadObserver) RecordRejection(reason string) {
	if o == nil {
		return
	}

	o.rejections.WithLabelValues(reason).Inc()
}
