// Package codec decodes pictures handed to the comparison tools and encodes
// diff artifacts.
package codec

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/xerrors"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// Decode recognizes png, jpeg, gif, bmp, tiff and webp and returns the
// format name alongside the picture.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", xerrors.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Supported reports whether Encode can produce format.
func Supported(format string) bool {
	switch format {
	case "", FormatPNG, FormatJPEG, "jpg", FormatBMP, FormatTIFF:
		return true
	}
	return false
}

func Encode(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case "", FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG, "jpg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return xerrors.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return xerrors.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

func Extension(format string) string {
	switch format {
	case "", FormatPNG:
		return "png"
	case FormatJPEG, "jpg":
		return "jpg"
	case FormatTIFF:
		return "tiff"
	default:
		return format
	}
}

func ContentType(format string) string {
	switch format {
	case "", FormatPNG:
		return "image/png"
	case FormatJPEG, "jpg":
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
