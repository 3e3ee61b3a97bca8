// Package imaging re-encodes embedded raster images in their original format.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/h2non/filetype"
)

// Format is an image format detected from content.
type Format string

const (
	FormatUnknown Format = ""
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("failed to decode image")
	ErrEncode            = errors.New("failed to encode image")
	// ErrNoImprovement is returned when the re-encoded image is not strictly smaller than the input.
	ErrNoImprovement = errors.New("re-encoded image is not smaller")
)

// DetectFormat sniffs the image format from the leading bytes of data.
func DetectFormat(data []byte) (Format, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if kind == filetype.Unknown {
		return FormatUnknown, ErrUnsupportedFormat
	}

	switch kind.Extension {
	case "png":
		return FormatPNG, nil
	case "jpg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return Format(kind.Extension), nil
	}
}

// JPEGQuality maps a quality in [0,1] to the JPEG encoder scale.
// The encoder treats anything below 1 as 1, so the result is clamped to [1,100].
func JPEGQuality(quality float64) int {
	q := int(math.Round(quality * 100))
	return min(max(q, 1), 100)
}

// Recompress decodes data and re-encodes it in the same format. PNG images are
// re-encoded losslessly at the best compression level and quality is ignored;
// JPEG images are re-encoded at JPEGQuality(quality). Other formats fail with
// ErrUnsupportedFormat. The result is returned only if it is strictly smaller
// than data, otherwise ErrNoImprovement is returned.
func Recompress(data []byte, quality float64) ([]byte, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: png: %w", ErrDecode, err)
		}
		// Non-zero compression levels make the encoder pick a filter per row.
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: png: %w", ErrEncode, err)
		}
	case FormatJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: jpeg: %w", ErrDecode, err)
		}
		if err := encodeJPEG(&buf, img, quality); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if buf.Len() >= len(data) {
		return nil, fmt.Errorf("%w: %d bytes re-encoded, %d bytes original", ErrNoImprovement, buf.Len(), len(data))
	}
	return buf.Bytes(), nil
}

func encodeJPEG(buf *bytes.Buffer, img image.Image, quality float64) error {
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
		return fmt.Errorf("%w: jpeg: %w", ErrEncode, err)
	}
	return nil
}
