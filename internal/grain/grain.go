// Package grain synthesizes photographic film grain: monochrome noise added
// per pixel, weighted by local luminance.
package grain

import (
	"fmt"

	"github.com/MeKo-Tech/filmlook/internal/raster"
)

// Apply adds one noise sample per pixel, shared across R, G, and B — grain is
// monochrome and correlated, not per-channel chroma noise. The sample is
// scaled by strength and by a luminance weight of 0.7 + 0.3*luminance, so
// grain is visible everywhere but emphasized in brighter regions. Channels
// clamp to [0,1].
//
// Apply is intentionally sequential: samples are drawn from noise in
// row-major pixel order, which keeps seeded sources reproducible.
func Apply(buf *raster.Buffer, lum raster.Luminance, strength float64, noise Source) *raster.Buffer {
	if len(lum) != buf.W*buf.H {
		panic(fmt.Sprintf("grain: luminance length %d does not match %dx%d", len(lum), buf.W, buf.H))
	}
	if strength == 0 {
		return buf.Clone()
	}

	dst := &raster.Buffer{W: buf.W, H: buf.H, Pix: make([]float32, len(buf.Pix))}
	for p, l := range lum {
		n := noise.Next() * strength
		weight := 0.7 + 0.3*float64(l)
		delta := n * weight

		i := p * raster.Channels
		for c := 0; c < 3; c++ {
			v := float64(buf.Pix[i+c]) + delta
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			dst.Pix[i+c] = float32(v)
		}
		dst.Pix[i+3] = buf.Pix[i+3]
	}
	return dst
}
