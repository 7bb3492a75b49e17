package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/image-uploader/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgUnauthorized     = "Unauthorized"
	msgNoFile           = "No image file provided"
	msgInvalidType      = "Invalid file type. Only images are allowed."
	msgTooLarge         = "File too large. Maximum size is 10MB."
	msgUploadFailed     = "Upload failed"
	msgInvalidID        = "Invalid id"
	msgNotFound         = "Not found"
)

func setCORS(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	ctx.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	ctx.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, Authorization")
}

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	setCORS(ctx)

	return ctx.Status(code).JSON(response.Error{Error: msg})
}

// uploadErrorResponse maps a use-case error onto the upload error taxonomy.
// Anything unrecognised is an upload failure carrying its root cause.
func uploadErrorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errs.ErrNoFile):
		return errorResponse(ctx, http.StatusBadRequest, msgNoFile)
	case errors.Is(err, errs.ErrInvalidContentType):
		return errorResponse(ctx, http.StatusBadRequest, msgInvalidType)
	case errors.Is(err, errs.ErrFileTooLarge):
		return errorResponse(ctx, http.StatusBadRequest, msgTooLarge)
	}

	setCORS(ctx)

	return ctx.Status(http.StatusInternalServerError).JSON(response.Error{
		Error:   msgUploadFailed,
		Details: errs.Cause(err).Error(),
	})
}
