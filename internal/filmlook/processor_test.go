package filmlook

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/MeKo-Tech/filmlook/internal/grain"
	"github.com/MeKo-Tech/filmlook/internal/raster"
	"github.com/MeKo-Tech/filmlook/internal/tone"
	"github.com/stretchr/testify/require"
)

// constSource always emits the same noise sample.
type constSource struct{ v float64 }

func (c constSource) Next() float64 { return c.v }

func uniformBuffer(w, h int, v float32) *raster.Buffer {
	buf := &raster.Buffer{W: w, H: h, Pix: make([]float32, w*h*raster.Channels)}
	for i := 0; i < len(buf.Pix); i += raster.Channels {
		buf.Pix[i] = v
		buf.Pix[i+1] = v
		buf.Pix[i+2] = v
		buf.Pix[i+3] = 1
	}
	return buf
}

func TestDefaultParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"toneA below domain", func(p *Params) { p.ToneA = 0.5 }},
		{"toneA above domain", func(p *Params) { p.ToneA = 11 }},
		{"negative glow threshold", func(p *Params) { p.GlowThreshold = -0.1 }},
		{"glow threshold above one", func(p *Params) { p.GlowThreshold = 1.5 }},
		{"glow strength above one", func(p *Params) { p.GlowStrength = 1.2 }},
		{"negative glow blur", func(p *Params) { p.GlowBlur = -1 }},
		{"glow blur too large", func(p *Params) { p.GlowBlur = 101 }},
		{"grain strength too large", func(p *Params) { p.GrainStrength = 0.2 }},
		{"negative soft focus strength", func(p *Params) { p.SoftFocusStrength = -0.01 }},
		{"soft focus radius too large", func(p *Params) { p.SoftFocusRadius = 51 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			err := p.Validate()
			require.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestProcessRejectsInvalidBuffer(t *testing.T) {
	pr := NewProcessor(Options{Workers: 1})

	_, err := pr.Process(&raster.Buffer{W: 0, H: 4, Pix: nil}, DefaultParams())
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = pr.Process(&raster.Buffer{W: 2, H: 2, Pix: make([]float32, 7)}, DefaultParams())
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestProcessRejectsInvalidParams(t *testing.T) {
	pr := NewProcessor(Options{Workers: 1})
	p := DefaultParams()
	p.GrainStrength = -0.5

	_, err := pr.Process(uniformBuffer(4, 4, 0.5), p)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestProcessPreservesDimensions(t *testing.T) {
	pr := NewProcessor(Options{Noise: grain.NewUniform(1), Workers: 2})
	src := uniformBuffer(13, 7, 0.42)

	out, err := pr.Process(src, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, src.W, out.W)
	require.Equal(t, src.H, out.H)
	require.Len(t, out.Pix, len(src.Pix))
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	pr := NewProcessor(Options{Noise: grain.NewUniform(1), Workers: 1})
	src := uniformBuffer(8, 8, 0.3)
	before := make([]float32, len(src.Pix))
	copy(before, src.Pix)

	_, err := pr.Process(src, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, before, src.Pix)
}

// With glow, grain, and soft focus all zeroed the pipeline reduces to the tone
// grade alone, bit for bit.
func TestProcessWithZeroStrengthsIsToneGradeOnly(t *testing.T) {
	pr := NewProcessor(Options{Noise: constSource{v: 1}, Workers: 1})
	src := uniformBuffer(9, 5, 0.6)

	p := DefaultParams()
	p.GlowStrength = 0
	p.GrainStrength = 0
	p.SoftFocusStrength = 0

	out, err := pr.Process(src, p)
	require.NoError(t, err)

	graded, _ := tone.Grade(src, p.ToneA, nil)
	require.Equal(t, graded.Pix, out.Pix)
}

// A flat mid-gray frame must come out flat: the default glow threshold sits
// above mid-gray luminance, grain is disabled here, and blurring a uniform
// image is a no-op.
func TestFlatGrayStaysFlat(t *testing.T) {
	const c = 128.0 / 255.0
	pr := NewProcessor(Options{Workers: 1})
	src := uniformBuffer(6, 6, float32(c))

	p := DefaultParams()
	p.GrainStrength = 0

	out, err := pr.Process(src, p)
	require.NoError(t, err)

	tc := 1 / (1 + math.Exp(-p.ToneA*(c-0.5)))
	highlight := (tc - 0.5) * 2
	wantR := tc + highlight*0.08
	wantG := tc + highlight*0.04
	wantB := tc - highlight*0.02

	first := [3]float32{out.Pix[0], out.Pix[1], out.Pix[2]}
	require.InDelta(t, wantR, float64(first[0]), 1e-4)
	require.InDelta(t, wantG, float64(first[1]), 1e-4)
	require.InDelta(t, wantB, float64(first[2]), 1e-4)

	for i := 0; i < len(out.Pix); i += raster.Channels {
		require.Equal(t, first[0], out.Pix[i])
		require.Equal(t, first[1], out.Pix[i+1])
		require.Equal(t, first[2], out.Pix[i+2])
	}
}

func TestProcessOutputStaysInRange(t *testing.T) {
	pr := NewProcessor(Options{Noise: constSource{v: 1}, Workers: 1})

	src := uniformBuffer(16, 16, 0)
	for i := 0; i < len(src.Pix); i += raster.Channels {
		// Alternate black and white pixels to stress both clamp bounds.
		if (i/raster.Channels)%2 == 0 {
			src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 1, 1, 1
		}
	}

	p := Params{
		ToneA:             10,
		GlowThreshold:     0,
		GlowStrength:      1,
		GlowBlur:          20,
		GrainStrength:     0.1,
		SoftFocusStrength: 1,
		SoftFocusRadius:   25,
	}
	require.NoError(t, p.Validate())

	out, err := pr.Process(src, p)
	require.NoError(t, err)
	for i, v := range out.Pix {
		require.GreaterOrEqualf(t, v, float32(0), "index %d", i)
		require.LessOrEqualf(t, v, float32(1), "index %d", i)
	}
}

func TestSeededProcessIsDeterministic(t *testing.T) {
	src := uniformBuffer(12, 12, 0.5)

	run := func() *raster.Buffer {
		pr := NewProcessor(Options{Noise: grain.NewUniform(99), Workers: 4})
		out, err := pr.Process(src, DefaultParams())
		require.NoError(t, err)
		return out
	}

	require.Equal(t, run().Pix, run().Pix)
}

func TestProcessImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 25), G: 128, B: uint8(y * 40), A: 255})
		}
	}

	pr := NewProcessor(Options{Noise: grain.NewUniform(3), Workers: 1})
	out, err := pr.ProcessImage(img, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, img.Bounds().Dx(), out.Bounds().Dx())
	require.Equal(t, img.Bounds().Dy(), out.Bounds().Dy())

	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			require.EqualValues(t, 255, out.NRGBAAt(x, y).A)
		}
	}
}
