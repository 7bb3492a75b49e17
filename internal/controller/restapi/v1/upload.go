package v1

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/andreyxaxa/image-uploader/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/image-uploader/internal/entity"
	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// @Summary     Upload an image
// @Description Stores one image in the bucket and returns its public URL. Any other method than POST or OPTIONS is refused.
// @Tags        uploads
// @Accept      mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       image formData file true "Image file (jpeg, png, gif, webp), up to 10MB"
// @Success     200 {object} response.Upload
// @Failure     400 {object} response.Error "No file, invalid type or too large"
// @Failure     401 {object} response.Error "Unauthorized"
// @Failure     405 {object} response.Error "Method not allowed"
// @Failure     500 {object} response.Error "Upload failed"
// @Router      /v1/upload [post]
func (r *V1) upload(ctx *fiber.Ctx) error {
	switch ctx.Method() {
	case fiber.MethodOptions:
		setCORS(ctx)

		return ctx.SendStatus(http.StatusNoContent)
	case fiber.MethodPost:
	default:
		return errorResponse(ctx, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	// 1. auth, before the body is touched
	if !r.authorized(ctx) {
		return errorResponse(ctx, http.StatusUnauthorized, msgUnauthorized)
	}

	// 2. multipart file
	fh, err := ctx.FormFile(r.formField)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return uploadErrorResponse(ctx, errs.ErrNoFile)
		}
		r.logger.Error(err, "restapi - v1 - upload - ctx.FormFile")

		return uploadErrorResponse(ctx, fmt.Errorf("restapi - v1 - upload - ctx.FormFile: %w", err))
	}

	body, err := fh.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - upload - fh.Open")

		return uploadErrorResponse(ctx, fmt.Errorf("restapi - v1 - upload - fh.Open: %w", err))
	}
	defer body.Close()

	// 3. validate + store
	obj, err := r.uploads.Upload(ctx.UserContext(), entity.ImageFile{
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get(fiber.HeaderContentType),
		Size:         fh.Size,
		Body:         body,
	})
	if err != nil {
		if !isRejection(err) {
			r.logger.Error(err, "restapi - v1 - upload")
		}

		return uploadErrorResponse(ctx, err)
	}

	r.logger.Info("upload stored, key=%s, size=%d, type=%s", obj.Key, obj.Size, obj.ContentType)

	setCORS(ctx)

	return ctx.Status(http.StatusOK).JSON(response.Upload{
		Success:  true,
		URL:      obj.URL,
		Filename: obj.Key,
	})
}

// @Summary     Upload status
// @Description Returns the ledger row of an upload, including its gallery thumbnail once rendered.
// @Tags        uploads
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Upload ID (uuid)"
// @Success     200 {object} response.UploadStatus
// @Failure     400 {object} response.Error "Invalid id"
// @Failure     401 {object} response.Error "Unauthorized"
// @Failure     404 {object} response.Error "Not found"
// @Failure     500 {object} response.Error "Upload failed"
// @Router      /v1/uploads/{id} [get]
func (r *V1) getUpload(ctx *fiber.Ctx) error {
	if !r.authorized(ctx) {
		return errorResponse(ctx, http.StatusUnauthorized, msgUnauthorized)
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, msgInvalidID)
	}

	obj, err := r.uploads.Get(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, msgNotFound)
		}
		r.logger.Error(err, "restapi - v1 - getUpload")

		return uploadErrorResponse(ctx, err)
	}

	setCORS(ctx)

	return ctx.Status(http.StatusOK).JSON(response.NewUploadStatus(obj, r.publicURL))
}

func (r *V1) authorized(ctx *fiber.Ctx) bool {
	got := []byte(ctx.Get(fiber.HeaderAuthorization))

	return subtle.ConstantTimeCompare(got, r.authHeader) == 1
}

func isRejection(err error) bool {
	return errors.Is(err, errs.ErrInvalidContentType) || errors.Is(err, errs.ErrFileTooLarge)
}
