package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/internal/repo"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
	"github.com/google/uuid"
)

// Observer receives upload telemetry.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int64, err error)
	RecordRejection(reason string)
}

type UseCase struct {
	store      repo.ObjectStore
	keys       *KeyGenerator
	publicBase string

	// ledger, optional
	objects    repo.StoredObjectRepo
	outbox     repo.OutboxRepo
	transactor repo.Transactor

	observer Observer
	logger   logger.Interface
	now      func() time.Time
}

type Option func(*UseCase)

// WithLedger records every stored object and an upload.stored outbox event in
// one transaction after the bucket write.
func WithLedger(objects repo.StoredObjectRepo, outbox repo.OutboxRepo, transactor repo.Transactor) Option {
	return func(uc *UseCase) {
		uc.objects = objects
		uc.outbox = outbox
		uc.transactor = transactor
	}
}

func WithObserver(o Observer) Option {
	return func(uc *UseCase) {
		if o != nil {
			uc.observer = o
		}
	}
}

func New(store repo.ObjectStore, keys *KeyGenerator, publicDomain string, l logger.Interface, opts ...Option) *UseCase {
	uc := &UseCase{
		store:      store,
		keys:       keys,
		publicBase: PublicBase(publicDomain),
		observer:   nopObserver{},
		logger:     l,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Upload validates file, writes it under a fresh key and returns the stored
// object. Invalid files never reach the store.
func (uc *UseCase) Upload(ctx context.Context, file entity.ImageFile) (*entity.StoredObject, error) {
	if err := Validate(file); err != nil {
		uc.observer.RecordRejection(rejectionReason(err))

		return nil, fmt.Errorf("UploadUseCase - Upload - Validate: %w", err)
	}

	key, err := uc.keys.Generate(file.OriginalName)
	if err != nil {
		return nil, fmt.Errorf("UploadUseCase - Upload - uc.keys.Generate: %w", err)
	}

	// 1. bucket write
	start := uc.now()
	err = uc.store.Put(ctx, key, file.Body, file.ContentType, file.Size)
	uc.observer.RecordUpload(uc.now().Sub(start), file.Size, err)
	if err != nil {
		return nil, fmt.Errorf("UploadUseCase - Upload - uc.store.Put: %w", err)
	}

	obj := &entity.StoredObject{
		ID:           uuid.New(),
		Key:          key,
		URL:          uc.PublicURL(key),
		OriginalName: file.OriginalName,
		ContentType:  file.ContentType,
		Size:         file.Size,
		Status:       entity.Stored,
		CreatedAt:    uc.now(),
	}

	if uc.objects == nil {
		return obj, nil
	}

	// 2. ledger row + outbox event in one transaction
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.objects.Create(ctx, obj); err != nil {
			return fmt.Errorf("UploadUseCase - Upload - uc.objects.Create: %w", err)
		}

		event, err := newStoredEvent(obj)
		if err != nil {
			return fmt.Errorf("UploadUseCase - Upload - newStoredEvent: %w", err)
		}

		if err := uc.outbox.Create(ctx, event); err != nil {
			return fmt.Errorf("UploadUseCase - Upload - uc.outbox.Create: %w", err)
		}

		return nil
	})

	// no key is handed out without its ledger row: drop the object
	if err != nil {
		deleteErr := uc.store.Delete(ctx, key)
		if deleteErr != nil {
			uc.logger.Error(deleteErr, "UploadUseCase - Upload - uc.store.Delete")
		}

		return nil, fmt.Errorf("UploadUseCase - Upload - uc.transactor.WithinTransaction: %w", err)
	}

	return obj, nil
}

func (uc *UseCase) PublicURL(key string) string {
	return uc.publicBase + "/" + key
}

// PublicBase turns the configured public domain into a URL prefix without a
// trailing slash. A bare host gets https.
func PublicBase(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if strings.HasPrefix(domain, "https://") || strings.HasPrefix(domain, "http://") {
		return domain
	}

	return "https://" + domain
}

func newStoredEvent(obj *entity.StoredObject) (*entity.OutboxEvent, error) {
	b, err := json.Marshal(entity.UploadStoredPayload{
		ID:          obj.ID,
		Key:         obj.Key,
		ContentType: obj.ContentType,
		Size:        obj.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: obj.ID,
		Type:        entity.EventUploadStored,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   obj.CreatedAt,
		RetryCount:  0,
	}, nil
}

// Get returns the ledger row of an upload. Without a ledger every id is unknown.
func (uc *UseCase) Get(ctx context.Context, id uuid.UUID) (*entity.StoredObject, error) {
	if uc.objects == nil {
		return nil, fmt.Errorf("UploadUseCase - Get: %w", errs.ErrRecordNotFound)
	}

	obj, err := uc.objects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UploadUseCase - Get - uc.objects.GetByID: %w", err)
	}

	return obj, nil
}
