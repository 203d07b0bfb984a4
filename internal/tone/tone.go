// Package tone applies the film-look tone curve and split-tone color grading.
package tone

import (
	"math"

	"github.com/MeKo-Tech/filmlook/internal/raster"
	"github.com/MeKo-Tech/filmlook/internal/worker"
)

// BT.709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Fixed per-channel grading offsets: cool shadows, warm highlights.
var (
	shadowOffset    = [3]float64{-0.05, 0.0, 0.05}
	highlightOffset = [3]float64{0.08, 0.04, -0.02}
)

// Grade applies a logistic tone curve independently per channel, computes
// BT.709 luminance from the tone-curved (pre-grade) values, and applies the
// fixed shadow/highlight grading offsets. toneA controls contrast steepness;
// values below 1 degenerate toward a flat mid-gray and are rejected by
// filmlook.Params.Validate before reaching this stage.
//
// The returned luminance buffer is indexed pixel-for-pixel with the graded
// buffer and is reused downstream; recomputing it later would be wrong since
// it is defined on pre-grade values.
func Grade(src *raster.Buffer, toneA float64, pool *worker.Pool) (*raster.Buffer, raster.Luminance) {
	if pool == nil {
		pool = worker.New(worker.Config{Workers: 1})
	}

	dst := &raster.Buffer{W: src.W, H: src.H, Pix: make([]float32, len(src.Pix))}
	lum := make(raster.Luminance, src.W*src.H)

	pool.Rows(src.H, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.W; x++ {
				i := src.Index(x, y)

				tcR := sigmoid(float64(src.Pix[i]), toneA)
				tcG := sigmoid(float64(src.Pix[i+1]), toneA)
				tcB := sigmoid(float64(src.Pix[i+2]), toneA)

				l := lumaR*tcR + lumaG*tcG + lumaB*tcB
				lum[y*src.W+x] = float32(l)

				shadow := clamp01((0.5 - l) * 2)
				highlight := clamp01((l - 0.5) * 2)

				dst.Pix[i] = float32(clamp01(tcR + shadow*shadowOffset[0] + highlight*highlightOffset[0]))
				dst.Pix[i+1] = float32(clamp01(tcG + shadow*shadowOffset[1] + highlight*highlightOffset[1]))
				dst.Pix[i+2] = float32(clamp01(tcB + shadow*shadowOffset[2] + highlight*highlightOffset[2]))
				dst.Pix[i+3] = 1
			}
		}
	})

	return dst, lum
}

func sigmoid(c, toneA float64) float64 {
	return 1 / (1 + math.Exp(-toneA*(c-0.5)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
