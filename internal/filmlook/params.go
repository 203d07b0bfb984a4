package filmlook

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports a parameter outside its documented domain.
// Out-of-range values are rejected rather than silently clamped, so caller
// bugs surface instead of being masked.
var ErrInvalidParameter = errors.New("parameter out of range")

// Params holds the film-look tunables. It is a value object: passed by value
// into Process and never mutated by the pipeline.
type Params struct {
	ToneA             float64 // tone-curve contrast steepness, [1,10]
	GlowThreshold     float64 // luminance cutoff for the glow mask, [0,1]
	GlowStrength      float64 // additive glow intensity, [0,1]
	GlowBlur          float64 // glow blur radius in pixels, [0,100]
	GrainStrength     float64 // grain amplitude, [0,0.1]
	SoftFocusStrength float64 // diffusion blend weight, [0,1]
	SoftFocusRadius   float64 // diffusion blur radius in pixels, [0,50]
}

// DefaultParams returns the stock film look.
func DefaultParams() Params {
	return Params{
		ToneA:             5.0,
		GlowThreshold:     0.7,
		GlowStrength:      0.4,
		GlowBlur:          40,
		GrainStrength:     0.02,
		SoftFocusStrength: 0.3,
		SoftFocusRadius:   10,
	}
}

// Validate checks every parameter against its documented range.
func (p Params) Validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"toneA", p.ToneA, 1, 10},
		{"glowThreshold", p.GlowThreshold, 0, 1},
		{"glowStrength", p.GlowStrength, 0, 1},
		{"glowBlur", p.GlowBlur, 0, 100},
		{"grainStrength", p.GrainStrength, 0, 0.1},
		{"softFocusStrength", p.SoftFocusStrength, 0, 1},
		{"softFocusRadius", p.SoftFocusRadius, 0, 50},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s %v outside [%v,%v]", ErrInvalidParameter, c.name, c.value, c.min, c.max)
		}
	}
	return nil
}
