package upload

import (
	"fmt"
	"strings"

	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
)

const MaxFileSize int64 = 10 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func IsAllowedContentType(contentType string) bool {
	return allowedContentTypes[strings.ToLower(contentType)]
}

// Validate checks the declared type first, then the size.
func Validate(file entity.ImageFile) error {
	if !IsAllowedContentType(file.ContentType) {
		return fmt.Errorf("content type %q: %w", file.ContentType, errs.ErrInvalidContentType)
	}

	if file.Size > MaxFileSize {
		return fmt.Errorf("%d bytes, limit %d: %w", file.Size, MaxFileSize, errs.ErrFileTooLarge)
	}

	return nil
}
