package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/andreyxaxa/image-uploader/pkg/types/errs"
	"github.com/disintegration/imaging"

	// registers the webp decoder with image.Decode, which imaging uses
	_ "golang.org/x/image/webp"
)

const (
	_defaultThumbWidth  = 400
	_defaultThumbHeight = 300
)

// ImageProcessor renders gallery thumbnails.
type ImageProcessor struct {
	width  int
	height int
}

func New(width, height int) *ImageProcessor {
	if width <= 0 || height <= 0 {
		width, height = _defaultThumbWidth, _defaultThumbHeight
	}

	return &ImageProcessor{width: width, height: height}
}

// Thumbnail center-crops data to the configured box. WEBP sources come back
// as JPEG, everything else keeps its format.
func (p *ImageProcessor) Thumbnail(ctx context.Context, contentType string, data []byte) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - Thumbnail: %w", err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - Thumbnail - decodeImage: %w", err)
	}

	thumb := imaging.Fill(img, p.width, p.height, imaging.Center, imaging.Lanczos)

	format, outType := outputFormat(contentType)

	res, err := encodeImage(thumb, format)
	if err != nil {
		return nil, "", fmt.Errorf("ImageProcessor - Thumbnail - encodeImage: %w", err)
	}

	return res, outType, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imaging.Decode: %v: %w", err, errs.ErrUnsupportedEncoding)
	}

	return img, nil
}

func encodeImage(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85))
	if err != nil {
		return nil, fmt.Errorf("imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}

func outputFormat(contentType string) (imaging.Format, string) {
	switch strings.ToLower(contentType) {
	case "image/png":
		return imaging.PNG, "image/png"
	case "image/gif":
		return imaging.GIF, "image/gif"
	default:
		return imaging.JPEG, "image/jpeg"
	}
}
