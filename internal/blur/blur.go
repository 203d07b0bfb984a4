// Package blur implements the separable Gaussian blur primitive shared by
// the glow and soft-focus stages.
package blur

import (
	"math"

	"github.com/MeKo-Tech/filmlook/internal/raster"
	"github.com/MeKo-Tech/filmlook/internal/worker"
)

// EdgePolicy selects how samples outside the buffer are sourced during
// convolution. The two call sites need different semantics, so the policy is
// an explicit parameter rather than a fixed behavior.
type EdgePolicy int

const (
	// EdgeClamp replicates the border pixel. Used when blurring actual image
	// content so borders do not pick up a darkening halo.
	EdgeClamp EdgePolicy = iota
	// EdgeZero treats out-of-bounds samples as transparent black. Used when
	// blurring an additive mask so glow decays outward past the frame edge
	// instead of brightening it.
	EdgeZero
)

// Kernel returns the normalized 1-D Gaussian kernel for the given radius,
// with sigma = radius/2 and half-width ceil(3*sigma).
func Kernel(radius float64) []float64 {
	sigma := radius / 2
	half := int(math.Ceil(3 * sigma))
	if half < 1 {
		half = 1
	}
	kernel := make([]float64, 2*half+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Gaussian blurs src with the given radius and edge policy and returns a
// fresh buffer of identical dimensions; src is never aliased or mutated.
// A radius <= 0 returns a copy of src. The blur runs as two 1-D passes
// (horizontal then vertical) over all four channels.
func Gaussian(src *raster.Buffer, radius float64, policy EdgePolicy, pool *worker.Pool) *raster.Buffer {
	if radius <= 0 {
		return src.Clone()
	}
	if pool == nil {
		pool = worker.New(worker.Config{Workers: 1})
	}

	kernel := Kernel(radius)
	tmp := &raster.Buffer{W: src.W, H: src.H, Pix: make([]float32, len(src.Pix))}
	dst := &raster.Buffer{W: src.W, H: src.H, Pix: make([]float32, len(src.Pix))}

	convolveRows(src, tmp, kernel, policy, pool)
	convolveCols(tmp, dst, kernel, policy, pool)
	return dst
}

func convolveRows(src, dst *raster.Buffer, kernel []float64, policy EdgePolicy, pool *worker.Pool) {
	half := len(kernel) / 2
	w := src.W

	pool.Rows(src.H, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			row := y * w * raster.Channels
			for x := 0; x < w; x++ {
				var r, g, b, a float64
				for k, wt := range kernel {
					sx := x + k - half
					if sx < 0 {
						if policy == EdgeZero {
							continue
						}
						sx = 0
					} else if sx >= w {
						if policy == EdgeZero {
							continue
						}
						sx = w - 1
					}
					i := row + sx*raster.Channels
					r += wt * float64(src.Pix[i])
					g += wt * float64(src.Pix[i+1])
					b += wt * float64(src.Pix[i+2])
					a += wt * float64(src.Pix[i+3])
				}
				o := row + x*raster.Channels
				dst.Pix[o] = float32(r)
				dst.Pix[o+1] = float32(g)
				dst.Pix[o+2] = float32(b)
				dst.Pix[o+3] = float32(a)
			}
		}
	})
}

func convolveCols(src, dst *raster.Buffer, kernel []float64, policy EdgePolicy, pool *worker.Pool) {
	half := len(kernel) / 2
	w, h := src.W, src.H
	stride := w * raster.Channels

	pool.Rows(h, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < w; x++ {
				var r, g, b, a float64
				for k, wt := range kernel {
					sy := y + k - half
					if sy < 0 {
						if policy == EdgeZero {
							continue
						}
						sy = 0
					} else if sy >= h {
						if policy == EdgeZero {
							continue
						}
						sy = h - 1
					}
					i := sy*stride + x*raster.Channels
					r += wt * float64(src.Pix[i])
					g += wt * float64(src.Pix[i+1])
					b += wt * float64(src.Pix[i+2])
					a += wt * float64(src.Pix[i+3])
				}
				o := y*stride + x*raster.Channels
				dst.Pix[o] = float32(r)
				dst.Pix[o+1] = float32(g)
				dst.Pix[o+2] = float32(b)
				dst.Pix[o+3] = float32(a)
			}
		}
	})
}
