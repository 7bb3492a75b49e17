package upload

import (
	"errors"
	"time"

	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
)

const (
	ReasonInvalidType = "invalid_type"
	ReasonTooLarge    = "too_large"
	ReasonOther       = "other"
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, errs.ErrInvalidContentType):
		return ReasonInvalidType
	case errors.Is(err, errs.ErrFileTooLarge):
		return ReasonTooLarge
	default:
		return ReasonOther
	}
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, int64, error) {}

func (nopObserver) RecordRejection(string) {}
