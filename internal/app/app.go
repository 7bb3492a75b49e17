package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/image-uploader/config"
	"github.com/andreyxaxa/image-uploader/internal/controller/restapi"
	"github.com/andreyxaxa/image-uploader/internal/infrastructure/metrics"
	"github.com/andreyxaxa/image-uploader/internal/repo/persistent"
	"github.com/andreyxaxa/image-uploader/internal/usecase/upload"
	"github.com/andreyxaxa/image-uploader/pkg/httpserver"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/andreyxaxa/image-uploader/pkg/s3client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3, connects in the background; the first upload waits for it
	s3c := s3client.New(ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey,
		s3client.Region(cfg.S3.Region),
		s3client.UsePathStyle(cfg.S3.UsePathStyle),
		s3client.Bucket(cfg.S3.Bucket),
		s3client.LoadTimeout(cfg.S3.CfgLoadTimeout),
	)
	s3c.Start()
	objectStore := persistent.NewObjectStore(s3c, cfg.S3.Bucket)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var uploadOpts []upload.Option

	if cfg.Metrics.Enabled {
		observer, err := metrics.NewUploadObserver(cfg.Metrics.Namespace, registry)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - metrics.NewUploadObserver: %w", err))
		}
		uploadOpts = append(uploadOpts, upload.WithObserver(observer))
	}

	// Pipeline: ledger, outbox relay, thumbnails
	var p *pipeline

	if cfg.Pipeline.Enabled {
		var err error

		p, err = newPipeline(ctx, cfg, objectStore, l)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - newPipeline: %w", err))
		}
		defer p.close()

		uploadOpts = append(uploadOpts, upload.WithLedger(p.objects, p.outbox, p.pg))
	}

	// Use-Case
	uploadUseCase := upload.New(
		objectStore,
		upload.NewKeyGenerator(upload.WithStrategy(upload.KeyStrategy(cfg.Upload.KeyStrategy))),
		cfg.Upload.PublicDomain,
		l,
		uploadOpts...,
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
	)
	restapi.NewRouter(httpServer.App, cfg, uploadUseCase, uploadUseCase.PublicURL, registry, l)

	// Start Components
	if p != nil {
		err := p.start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - p.start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err := <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err := httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if p != nil {
		p.shutdown(ctx, cfg, l)
	}
}
