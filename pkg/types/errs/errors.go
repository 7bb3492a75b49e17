package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")

	// upload validation
	ErrNoFile              = errors.New("no image file provided")
	ErrInvalidContentType  = errors.New("invalid file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedEncoding = errors.New("unsupported image encoding")
)

// Cause returns the innermost error of a wrapped chain.
func Cause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}

	return nil
}
