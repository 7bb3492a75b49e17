package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/internal/infrastructure"
	"github.com/andreyxaxa/image-uploader/internal/repo"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
)

const keyPrefix = "thumbnails/"

type ThumbnailUseCase struct {
	store   repo.ObjectStore
	objects repo.StoredObjectRepo
	p       infrastructure.ImageProcessor

	cpuTimeout time.Duration

	logger logger.Interface
	now    func() time.Time
}

func New(
	store repo.ObjectStore,
	objects repo.StoredObjectRepo,
	p infrastructure.ImageProcessor,
	cpuTimeout time.Duration,
	l logger.Interface,
) *ThumbnailUseCase {
	return &ThumbnailUseCase{
		store:      store,
		objects:    objects,
		p:          p,
		cpuTimeout: cpuTimeout,
		logger:     l,
		now:        time.Now,
	}
}

// Render builds the gallery thumbnail for a stored upload and returns its key.
// Sources that cannot be decoded are marked failed and yield an empty key with
// no error, since redelivery would fail the same way.
func (uc *ThumbnailUseCase) Render(ctx context.Context, payload entity.UploadStoredPayload) (string, error) {
	// 1. original from the bucket
	data, err := uc.store.Get(ctx, payload.Key)
	if err != nil {
		return "", fmt.Errorf("ThumbnailUseCase - Render - uc.store.Get: %w", err)
	}

	// 2. resize
	cpuCtx, cpuCancel := context.WithTimeout(ctx, uc.cpuTimeout)
	thumb, contentType, err := uc.p.Thumbnail(cpuCtx, payload.ContentType, data)
	cpuCancel()
	if err != nil {
		if errors.Is(err, errs.ErrUnsupportedEncoding) {
			uc.logger.Warn("thumbnail skipped, key=%s, error=%v", payload.Key, err)

			if markErr := uc.objects.MarkFailed(ctx, payload.ID); markErr != nil {
				return "", fmt.Errorf("ThumbnailUseCase - Render - uc.objects.MarkFailed: %w", markErr)
			}

			return "", nil
		}

		return "", fmt.Errorf("ThumbnailUseCase - Render - uc.p.Thumbnail: %w", err)
	}

	// 3. thumbnail next to the original
	thumbKey := Key(payload.Key, contentType)
	err = uc.store.Put(ctx, thumbKey, bytes.NewReader(thumb), contentType, int64(len(thumb)))
	if err != nil {
		return "", fmt.Errorf("ThumbnailUseCase - Render - uc.store.Put: %w", err)
	}

	// 4. ledger
	err = uc.objects.MarkProcessed(ctx, payload.ID, thumbKey, uc.now())
	if err != nil {
		deleteErr := uc.store.Delete(ctx, thumbKey)
		if deleteErr != nil {
			uc.logger.Error(deleteErr, "ThumbnailUseCase - Render - uc.store.Delete")
		}

		return "", fmt.Errorf("ThumbnailUseCase - Render - uc.objects.MarkProcessed: %w", err)
	}

	return thumbKey, nil
}

// Key maps an original key to its thumbnail key, switching the extension when
// the thumbnail is encoded differently.
func Key(originalKey, contentType string) string {
	base := originalKey
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	var ext string
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/gif":
		ext = "gif"
	default:
		ext = "jpg"
	}

	return keyPrefix + base + "." + ext
}
