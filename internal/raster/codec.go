package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/heri-science/artifact-pipeline/pkg/pipeline"
)

// DefaultJPEGQuality matches the service's historical output quality.
const DefaultJPEGQuality = 90

// Decode parses encoded image bytes into a Buffer. maxDim bounds both
// dimensions of the input; a non-positive maxDim disables the check.
// Dimension checks run on the header before the full bitmap is decoded, so
// oversized inputs fail fast with a size-limit error rather than a decode
// attempt.
func Decode(data []byte, maxDim int) (*Buffer, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, pipeline.NewProcessError(pipeline.KindDecode, "", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, pipeline.NewProcessError(pipeline.KindDecode, "",
			fmt.Errorf("invalid image dimensions: %dx%d", cfg.Width, cfg.Height))
	}
	if maxDim > 0 && (cfg.Width > maxDim || cfg.Height > maxDim) {
		return nil, pipeline.NewProcessError(pipeline.KindSizeLimit, "",
			fmt.Errorf("input %dx%d exceeds maximum dimension %d", cfg.Width, cfg.Height, maxDim))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, pipeline.NewProcessError(pipeline.KindDecode, "",
			fmt.Errorf("decode %s: %w", format, err))
	}

	return FromImage(imaging.Clone(img)), nil
}

// Encode serializes a buffer into the target format. Supported formats are
// "jpeg" (with quality 1..100) and "png". Anything else is an encode error.
func Encode(b *Buffer, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg", "jpg", "":
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		if quality > 100 {
			return nil, pipeline.NewProcessError(pipeline.KindEncode, "",
				fmt.Errorf("invalid jpeg quality: %d", quality))
		}
		if err := jpeg.Encode(&buf, b.ToNRGBA(), &jpeg.Options{Quality: quality}); err != nil {
			return nil, pipeline.NewProcessError(pipeline.KindEncode, "", err)
		}
	case "png":
		if err := png.Encode(&buf, b.ToNRGBA()); err != nil {
			return nil, pipeline.NewProcessError(pipeline.KindEncode, "", err)
		}
	default:
		return nil, pipeline.NewProcessError(pipeline.KindEncode, "",
			fmt.Errorf("unsupported output format: %q", format))
	}

	return buf.Bytes(), nil
}

// NormalizeFormat canonicalizes a requested output format. Empty means
// JPEG.
func NormalizeFormat(format string) string {
	switch format {
	case "", "jpg", "jpeg":
		return "jpeg"
	default:
		return format
	}
}
