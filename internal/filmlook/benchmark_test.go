package filmlook

import (
	"testing"

	"github.com/MeKo-Tech/filmlook/internal/blur"
	"github.com/MeKo-Tech/filmlook/internal/grain"
	"github.com/MeKo-Tech/filmlook/internal/raster"
)

func benchBuffer(w, h int) *raster.Buffer {
	buf := &raster.Buffer{W: w, H: h, Pix: make([]float32, w*h*raster.Channels)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := buf.Index(x, y)
			buf.Pix[i] = float32(x%256) / 255
			buf.Pix[i+1] = float32(y%256) / 255
			buf.Pix[i+2] = float32((x+y)%256) / 255
			buf.Pix[i+3] = 1
		}
	}
	return buf
}

func BenchmarkProcess(b *testing.B) {
	pr := NewProcessor(Options{Noise: grain.NewUniform(1)})
	src := benchBuffer(256, 256)
	params := DefaultParams()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pr.Process(src, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProcessSequential(b *testing.B) {
	pr := NewProcessor(Options{Noise: grain.NewUniform(1), Workers: 1})
	src := benchBuffer(256, 256)
	params := DefaultParams()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pr.Process(src, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGaussianBlur(b *testing.B) {
	src := benchBuffer(256, 256)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = blur.Gaussian(src, 10, blur.EdgeClamp, nil)
	}
}
