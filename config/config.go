package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/usecase/upload"
	"github.com/caarlos0/env/v11"
)

// _multipartMargin leaves room for the multipart envelope around a file of
// exactly upload.MaxFileSize bytes.
const _multipartMargin = 64 * 1024

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		Upload          Upload
		S3              S3
		Pipeline        Pipeline
		PG              PG
		Kafka           Kafka
		OutboxRelay     OutboxRelay
		KafkaController KafkaController
		Thumbnail       Thumbnail
		Metrics         Metrics
		Swagger         Swagger
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT,required"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		BodyLimit      int           `env:"HTTP_BODY_LIMIT" envDefault:"33554432"` // 32 MiB, above the upload ceiling
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	Upload struct {
		AuthSecret   string `env:"UPLOAD_AUTH_SECRET,required,notEmpty"`
		PublicDomain string `env:"UPLOAD_PUBLIC_DOMAIN,required,notEmpty"`
		FormField    string `env:"UPLOAD_FORM_FIELD" envDefault:"image"`
		KeyStrategy  string `env:"UPLOAD_KEY_STRATEGY" envDefault:"random"` // random | uuid
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		Region         string        `env:"S3_REGION" envDefault:"auto"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		UsePathStyle   bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	// Pipeline turns on the upload ledger, the outbox relay and the thumbnail
	// consumer. Without it the service keeps no state between requests.
	Pipeline struct {
		Enabled bool `env:"PIPELINE_ENABLED" envDefault:"false"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"2"`
		URL     string `env:"PG_URL"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS"`
		GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"image-uploader-thumbnails"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"uploads"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		CleanupRetention    time.Duration `env:"OUTBOX_RELAY_CLEANUP_RETENTION" envDefault:"168h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"15s"`
		CPUTimeout      time.Duration `env:"KAFKA_CONTROLLER_CPU_TIMEOUT" envDefault:"8s"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"0"` // 0 = runtime.NumCPU()
	}

	Thumbnail struct {
		Width  int `env:"THUMBNAIL_WIDTH" envDefault:"400"`
		Height int `env:"THUMBNAIL_HEIGHT" envDefault:"300"`
	}

	Metrics struct {
		Enabled   bool   `env:"METRICS_ENABLED" envDefault:"true"`
		Namespace string `env:"METRICS_NAMESPACE" envDefault:"image_uploader"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

var ErrInvalidConfig = errors.New("invalid config")

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Upload.KeyStrategy {
	case "random", "uuid":
	default:
		return fmt.Errorf("%w: UPLOAD_KEY_STRATEGY must be random or uuid, got %q", ErrInvalidConfig, c.Upload.KeyStrategy)
	}

	if c.Upload.FormField == "" {
		return fmt.Errorf("%w: UPLOAD_FORM_FIELD is empty", ErrInvalidConfig)
	}

	if minLimit := int(upload.MaxFileSize) + _multipartMargin; c.HTTP.BodyLimit < minLimit {
		return fmt.Errorf("%w: HTTP_BODY_LIMIT must be at least %d, got %d", ErrInvalidConfig, minLimit, c.HTTP.BodyLimit)
	}

	if !c.Pipeline.Enabled {
		return nil
	}

	if c.PG.URL == "" {
		return fmt.Errorf("%w: PG_URL is required when PIPELINE_ENABLED", ErrInvalidConfig)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: KAFKA_BROKERS is required when PIPELINE_ENABLED", ErrInvalidConfig)
	}

	return nil
}
