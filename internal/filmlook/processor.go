// Package filmlook orchestrates the film-look pipeline: tone grading, glow,
// grain, and soft focus, in that fixed order.
package filmlook

import (
	"image"
	"log/slog"

	"github.com/MeKo-Tech/filmlook/internal/glow"
	"github.com/MeKo-Tech/filmlook/internal/grain"
	"github.com/MeKo-Tech/filmlook/internal/raster"
	"github.com/MeKo-Tech/filmlook/internal/softfocus"
	"github.com/MeKo-Tech/filmlook/internal/tone"
	"github.com/MeKo-Tech/filmlook/internal/worker"
)

// ErrInvalidDimensions mirrors the raster buffer invariant at the pipeline
// boundary.
var ErrInvalidDimensions = raster.ErrInvalidDimensions

// Options configure a Processor.
type Options struct {
	// Noise is the grain noise source; nil uses an unseeded uniform source.
	// Tests inject a seeded or fixed-sequence source here.
	Noise grain.Source
	// Workers bounds stage parallelism; <= 0 uses all CPUs, 1 is sequential.
	Workers int
	// Logger for debug output; nil falls back to slog.Default.
	Logger *slog.Logger
}

// Processor applies the film look. Aside from the grain noise stream it
// retains no state between invocations; each Process call owns its
// intermediate buffers exclusively.
type Processor struct {
	noise  grain.Source
	pool   *worker.Pool
	logger *slog.Logger
}

// NewProcessor creates a processor.
func NewProcessor(opts Options) *Processor {
	noise := opts.Noise
	if noise == nil {
		noise = grain.NewUniform(0)
	}
	return &Processor{
		noise:  noise,
		pool:   worker.New(worker.Config{Workers: opts.Workers}),
		logger: opts.Logger,
	}
}

// Process runs the four stages over src and returns a fresh buffer of
// identical dimensions. src is never mutated. Invalid input dimensions or
// out-of-range parameters fail the whole call; there is no partial result.
func (pr *Processor) Process(src *raster.Buffer, params Params) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	graded, lum := tone.Grade(src, params.ToneA, pr.pool)
	pr.log().Debug("tone grading done", "w", src.W, "h", src.H, "tone_a", params.ToneA)

	glowed := glow.Apply(graded, lum, params.GlowThreshold, params.GlowStrength, params.GlowBlur, pr.pool)
	pr.log().Debug("glow composited", "threshold", params.GlowThreshold, "strength", params.GlowStrength)

	grained := grain.Apply(glowed, lum, params.GrainStrength, pr.noise)

	out := softfocus.Apply(grained, params.SoftFocusRadius, params.SoftFocusStrength, pr.pool)
	pr.log().Debug("soft focus blended", "radius", params.SoftFocusRadius, "strength", params.SoftFocusStrength)

	return out, nil
}

// ProcessImage is the 8-bit boundary: it converts img to the float domain,
// runs Process, and converts back, clamping channels into [0,255].
func (pr *Processor) ProcessImage(img image.Image, params Params) (*image.NRGBA, error) {
	src, err := raster.FromImage(img)
	if err != nil {
		return nil, err
	}
	out, err := pr.Process(src, params)
	if err != nil {
		return nil, err
	}
	return out.ToNRGBA(), nil
}

func (pr *Processor) log() *slog.Logger {
	if pr.logger != nil {
		return pr.logger
	}
	return slog.Default()
}
