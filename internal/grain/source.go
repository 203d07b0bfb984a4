package grain

import (
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
)

// Source produces noise samples in [-1, 1]. Production uses an unseeded
// uniform source; tests inject a seeded or fixed-sequence one.
type Source interface {
	Next() float64
}

type uniformSource struct {
	rng *rand.Rand
}

// NewUniform returns a uniform [-1,1] source. A seed of 0 seeds from the
// clock.
func NewUniform(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &uniformSource{rng: rand.New(rand.NewSource(seed))}
}

func (u *uniformSource) Next() float64 {
	return u.rng.Float64()*2 - 1
}

type perlinSource struct {
	noise *perlin.Perlin
	t     float64
	step  float64
}

// NewPerlin returns a source that walks 1-D Perlin noise, so successive
// samples are correlated. Drawn in row-major order this clusters grain into
// short horizontal runs, closer to the clumpy texture of scanned film stock
// than independent per-pixel noise. step controls the correlation length;
// values around 0.35 work well, and step <= 0 falls back to that default.
func NewPerlin(seed int64, step float64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if step <= 0 {
		step = 0.35
	}
	return &perlinSource{
		noise: perlin.NewPerlin(2.0, 2.0, 3, seed),
		step:  step,
	}
}

func (s *perlinSource) Next() float64 {
	s.t += s.step
	v := s.noise.Noise1D(s.t)
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	return v
}
