package v1

import (
	"github.com/andreyxaxa/image-uploader/internal/usecase"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
)

type V1 struct {
	uploads usecase.UploadUseCase
	logger  logger.Interface

	// "Bearer <secret>"
	authHeader []byte
	formField  string
	publicURL  func(key string) string
}
