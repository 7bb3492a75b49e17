package entity

import "io"

// ImageFile is the file part extracted from an upload request. Body is owned
// by the request and is only valid until the handler returns.
type ImageFile struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}
