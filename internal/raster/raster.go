// Package raster provides the float-precision pixel buffer the film-look
// pipeline operates on. Conversion to and from 8-bit images happens only at
// the pipeline boundary so sequential blurs don't compound rounding error.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Channels is the number of interleaved channels per pixel (R, G, B, A).
const Channels = 4

// ErrInvalidDimensions reports a non-positive width/height or a pixel slice
// whose length does not match the declared dimensions.
var ErrInvalidDimensions = errors.New("invalid buffer dimensions")

// Buffer is a row-major, top-left-origin RGBA pixel buffer with channel
// values normalized to [0,1]. Stages never alias an input buffer as their
// output; each produces a fresh Buffer.
type Buffer struct {
	W, H int
	Pix  []float32
}

// Luminance holds one brightness value per pixel, index-aligned with the
// Buffer it was derived from.
type Luminance []float32

// New allocates a zeroed buffer.
func New(w, h int) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*Channels)}, nil
}

// Validate checks the buffer invariants: positive dimensions and an exactly
// sized pixel slice.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	if b.W <= 0 || b.H <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.W, b.H)
	}
	if len(b.Pix) != b.W*b.H*Channels {
		return fmt.Errorf("%w: %dx%d buffer has %d values, want %d",
			ErrInvalidDimensions, b.W, b.H, len(b.Pix), b.W*b.H*Channels)
	}
	return nil
}

// Index returns the offset of pixel (x, y) into Pix.
func (b *Buffer) Index(x, y int) int {
	return (y*b.W + x) * Channels
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	pix := make([]float32, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{W: b.W, H: b.H, Pix: pix}
}

// FromImage converts an 8-bit image into a normalized float buffer.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf, err := New(w, h)
	if err != nil {
		return nil, err
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				i := buf.Index(x, y)
				buf.Pix[i] = float32(c.R) / 255
				buf.Pix[i+1] = float32(c.G) / 255
				buf.Pix[i+2] = float32(c.B) / 255
				buf.Pix[i+3] = float32(c.A) / 255
			}
		}
		return buf, nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := buf.Index(x, y)
			buf.Pix[i] = float32(c.R) / 255
			buf.Pix[i+1] = float32(c.G) / 255
			buf.Pix[i+2] = float32(c.B) / 255
			buf.Pix[i+3] = float32(c.A) / 255
		}
	}
	return buf, nil
}

// FromBytes wraps raw interleaved RGBA bytes (e.g. a canvas ImageData) into a
// normalized float buffer.
func FromBytes(w, h int, rgba []byte) (*Buffer, error) {
	buf, err := New(w, h)
	if err != nil {
		return nil, err
	}
	if len(rgba) != w*h*Channels {
		return nil, fmt.Errorf("%w: %dx%d pixel data has %d bytes, want %d",
			ErrInvalidDimensions, w, h, len(rgba), w*h*Channels)
	}
	for i, v := range rgba {
		buf.Pix[i] = float32(v) / 255
	}
	return buf, nil
}

// ToNRGBA converts back to an 8-bit image, clamping each channel to [0,1].
func (b *Buffer) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			i := b.Index(x, y)
			dst.SetNRGBA(x, y, color.NRGBA{
				R: toByte(b.Pix[i]),
				G: toByte(b.Pix[i+1]),
				B: toByte(b.Pix[i+2]),
				A: toByte(b.Pix[i+3]),
			})
		}
	}
	return dst
}

// Bytes returns the buffer as interleaved 8-bit RGBA, clamped.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.Pix))
	for i, v := range b.Pix {
		out[i] = toByte(v)
	}
	return out
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
