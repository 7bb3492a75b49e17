package restapi

import (
	"net/http"

	"github.com/andreyxaxa/image-uploader/config"
	v1 "github.com/andreyxaxa/image-uploader/internal/controller/restapi/v1"
	"github.com/andreyxaxa/image-uploader/internal/usecase"
	"github.com/andreyxaxa/image-uploader/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title                      Image uploader
// @version                    1.0.0
// @description                Authenticated image intake backed by S3-compatible storage.
// @host                       localhost:8080
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	uploads usecase.UploadUseCase,
	publicURL func(key string) string,
	gatherer prometheus.Gatherer,
	l logger.Interface,
) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))

	// Probes
	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Prometheus
	if cfg.Metrics.Enabled && gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	v1.NewUploadRoutes(app, uploads, l, v1.RoutesConfig{
		AuthSecret: cfg.Upload.AuthSecret,
		FormField:  cfg.Upload.FormField,
		PublicURL:  publicURL,
	})
}
