// Package glow implements the bloom stage: a luminance-threshold mask,
// blurred and additively composited back onto the graded image.
package glow

import (
	"fmt"

	"github.com/MeKo-Tech/filmlook/internal/blur"
	"github.com/MeKo-Tech/filmlook/internal/raster"
	"github.com/MeKo-Tech/filmlook/internal/worker"
)

// Mask builds the binary glow mask for a luminance buffer: white where
// luminance strictly exceeds threshold, black otherwise, with alpha fixed at
// full opacity. The mask is grayscale, so blurring it spreads light
// proportionally to how much of the kernel footprint fell on bright pixels.
func Mask(lum raster.Luminance, w, h int, threshold float64) *raster.Buffer {
	if len(lum) != w*h {
		panic(fmt.Sprintf("glow: luminance length %d does not match %dx%d", len(lum), w, h))
	}
	mask := &raster.Buffer{W: w, H: h, Pix: make([]float32, w*h*raster.Channels)}
	for p, l := range lum {
		i := p * raster.Channels
		if float64(l) > threshold {
			mask.Pix[i] = 1
			mask.Pix[i+1] = 1
			mask.Pix[i+2] = 1
		}
		mask.Pix[i+3] = 1
	}
	return mask
}

// Apply extracts the glow mask, blurs it with zero-outside-bounds edges, and
// adds it onto the graded image scaled by strength, clamping to [0,1].
// A threshold >= 1 lights no pixels; a threshold <= 0 lights the whole frame.
func Apply(graded *raster.Buffer, lum raster.Luminance, threshold, strength, blurRadius float64, pool *worker.Pool) *raster.Buffer {
	if strength == 0 {
		return graded.Clone()
	}

	mask := Mask(lum, graded.W, graded.H, threshold)
	field := blur.Gaussian(mask, blurRadius, blur.EdgeZero, pool)

	dst := &raster.Buffer{W: graded.W, H: graded.H, Pix: make([]float32, len(graded.Pix))}
	if pool == nil {
		pool = worker.New(worker.Config{Workers: 1})
	}
	pool.Rows(graded.H, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < graded.W; x++ {
				i := graded.Index(x, y)
				for c := 0; c < 3; c++ {
					v := float64(graded.Pix[i+c]) + float64(field.Pix[i+c])*strength
					if v > 1 {
						v = 1
					}
					dst.Pix[i+c] = float32(v)
				}
				dst.Pix[i+3] = graded.Pix[i+3]
			}
		}
	})
	return dst
}
