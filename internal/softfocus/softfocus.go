// Package softfocus implements the diffusion stage: the image blended with a
// blurred copy of itself.
package softfocus

import (
	"github.com/MeKo-Tech/filmlook/internal/blur"
	"github.com/MeKo-Tech/filmlook/internal/raster"
	"github.com/MeKo-Tech/filmlook/internal/worker"
)

// Apply blurs src with clamp-to-edge sampling (blurring real image content
// must not darken the frame border) and alpha-blends the result back over the
// sharp original: out = src*(1-strength) + blurred*strength. strength 0 is
// the identity, strength 1 is fully diffused.
func Apply(src *raster.Buffer, radius, strength float64, pool *worker.Pool) *raster.Buffer {
	if strength <= 0 {
		return src.Clone()
	}
	if strength > 1 {
		strength = 1
	}

	blurred := blur.Gaussian(src, radius, blur.EdgeClamp, pool)

	dst := &raster.Buffer{W: src.W, H: src.H, Pix: make([]float32, len(src.Pix))}
	if pool == nil {
		pool = worker.New(worker.Config{Workers: 1})
	}
	pool.Rows(src.H, func(lo, hi int) {
		stride := src.W * raster.Channels
		for y := lo; y < hi; y++ {
			row := y * stride
			for i := row; i < row+stride; i++ {
				dst.Pix[i] = float32(float64(src.Pix[i])*(1-strength) + float64(blurred.Pix[i])*strength)
			}
		}
	})
	return dst
}
