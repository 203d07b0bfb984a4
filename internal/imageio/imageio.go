// Package imageio handles the decode/downscale/encode glue around the core
// pipeline. The pipeline itself performs no I/O.
package imageio

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// DefaultJPEGQuality is used when a caller passes a quality <= 0.
const DefaultJPEGQuality = 90

// Load decodes a PNG or JPEG file.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close() // nolint:errcheck

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// FitDown scales img down so its longer side is at most maxDim, preserving
// aspect ratio. Images already within bounds (or maxDim <= 0) are returned
// unchanged.
func FitDown(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	outW, outH := maxDim, maxDim
	if w > h {
		outH = h * maxDim / w
	} else {
		outW = w * maxDim / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// Save encodes img to path, choosing the format from the file extension
// (.png, .jpg, .jpeg). jpegQuality <= 0 uses DefaultJPEGQuality.
func Save(path string, img image.Image, jpegQuality int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close() // nolint:errcheck

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if err := png.Encode(file, img); err != nil {
			return fmt.Errorf("failed to encode PNG %s: %w", path, err)
		}
	case ".jpg", ".jpeg":
		if jpegQuality <= 0 {
			jpegQuality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("failed to encode JPEG %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported output format %q (use .png, .jpg, or .jpeg)", filepath.Ext(path))
	}
	return nil
}
