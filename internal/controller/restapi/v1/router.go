package v1

import (
	"github.com/andreyxaxa/image-uploader/internal/usecase"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

type RoutesConfig struct {
	AuthSecret string
	FormField  string
	// PublicURL maps an object key to the URL it is served from.
	PublicURL func(key string) string
}

// NewUploadRoutes mounts the upload handler on the root and on /v1/upload.
// Both accept every method; the handler answers non-POST requests itself.
func NewUploadRoutes(app fiber.Router, uploads usecase.UploadUseCase, l logger.Interface, cfg RoutesConfig) {
	r := &V1{
		uploads:    uploads,
		logger:     l,
		authHeader: []byte("Bearer " + cfg.AuthSecret),
		formField:  cfg.FormField,
		publicURL:  cfg.PublicURL,
	}

	app.All("/", r.upload)

	apiV1Group := app.Group("/v1")
	{
		apiV1Group.All("/upload", r.upload)
		apiV1Group.Get("/uploads/:id", r.getUpload)
	}
}
