package cmd

import (
	"fmt"
	"time"

	"github.com/MeKo-Tech/filmlook/internal/filmlook"
	"github.com/MeKo-Tech/filmlook/internal/grain"
	"github.com/MeKo-Tech/filmlook/internal/imageio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the film look to an image file",
	Long:  `Apply the film-look pipeline to a PNG or JPEG image and write the result.`,
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringP("input", "i", "", "Input image path (PNG or JPEG, required)")
	applyCmd.Flags().StringP("output", "o", "", "Output image path, format by extension (required)")
	applyCmd.Flags().Int("max-dim", 1600, "Downscale input so its longer side is at most this (0 disables)")
	applyCmd.Flags().Int("jpeg-quality", imageio.DefaultJPEGQuality, "JPEG encoding quality (1-100)")
	applyCmd.Flags().Int64("seed", 0, "Grain noise seed (0 uses the clock)")
	applyCmd.Flags().String("grain-source", "uniform", "Grain noise source: uniform or perlin")
	applyCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")

	// Look parameters
	applyCmd.Flags().Float64("tone-a", 5.0, "Tone-curve contrast steepness [1,10]")
	applyCmd.Flags().Float64("glow-threshold", 0.7, "Luminance cutoff for the glow mask [0,1]")
	applyCmd.Flags().Float64("glow-strength", 0.4, "Additive glow intensity [0,1]")
	applyCmd.Flags().Float64("glow-blur", 40, "Glow blur radius in pixels [0,100]")
	applyCmd.Flags().Float64("grain-strength", 0.02, "Grain amplitude [0,0.1]")
	applyCmd.Flags().Float64("soft-focus-strength", 0.3, "Diffusion blend weight [0,1]")
	applyCmd.Flags().Float64("soft-focus-radius", 10, "Diffusion blur radius in pixels [0,50]")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"apply.input", "input"},
		{"apply.output", "output"},
		{"apply.max_dim", "max-dim"},
		{"apply.jpeg_quality", "jpeg-quality"},
		{"apply.seed", "seed"},
		{"apply.grain_source", "grain-source"},
		{"apply.workers", "workers"},
		{"apply.tone_a", "tone-a"},
		{"apply.glow_threshold", "glow-threshold"},
		{"apply.glow_strength", "glow-strength"},
		{"apply.glow_blur", "glow-blur"},
		{"apply.grain_strength", "grain-strength"},
		{"apply.soft_focus_strength", "soft-focus-strength"},
		{"apply.soft_focus_radius", "soft-focus-radius"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, applyCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	input := viper.GetString("apply.input")
	output := viper.GetString("apply.output")
	maxDim := viper.GetInt("apply.max_dim")
	jpegQuality := viper.GetInt("apply.jpeg_quality")
	seed := viper.GetInt64("apply.seed")
	grainSource := viper.GetString("apply.grain_source")
	workers := viper.GetInt("apply.workers")

	if logger == nil {
		initLogging()
	}

	if input == "" {
		return fmt.Errorf("--input is required")
	}
	if output == "" {
		return fmt.Errorf("--output is required")
	}

	params := filmlook.Params{
		ToneA:             viper.GetFloat64("apply.tone_a"),
		GlowThreshold:     viper.GetFloat64("apply.glow_threshold"),
		GlowStrength:      viper.GetFloat64("apply.glow_strength"),
		GlowBlur:          viper.GetFloat64("apply.glow_blur"),
		GrainStrength:     viper.GetFloat64("apply.grain_strength"),
		SoftFocusStrength: viper.GetFloat64("apply.soft_focus_strength"),
		SoftFocusRadius:   viper.GetFloat64("apply.soft_focus_radius"),
	}
	if err := params.Validate(); err != nil {
		return err
	}

	noise, err := newGrainSource(grainSource, seed)
	if err != nil {
		return err
	}

	logger.Info("Loading image", "path", input)
	img, err := imageio.Load(input)
	if err != nil {
		return err
	}

	scaled := imageio.FitDown(img, maxDim)
	if scaled != img {
		logger.Info("Downscaled input",
			"from", img.Bounds().Size().String(),
			"to", scaled.Bounds().Size().String(),
		)
	}

	proc := filmlook.NewProcessor(filmlook.Options{
		Noise:   noise,
		Workers: workers,
		Logger:  logger,
	})

	start := time.Now()
	out, err := proc.ProcessImage(scaled, params)
	if err != nil {
		return fmt.Errorf("failed to process image: %w", err)
	}
	logger.Info("Processed image",
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
		"elapsed", time.Since(start).String(),
	)

	if err := imageio.Save(output, out, jpegQuality); err != nil {
		return err
	}
	logger.Info("Wrote output", "path", output)
	return nil
}

func newGrainSource(name string, seed int64) (grain.Source, error) {
	switch name {
	case "uniform":
		return grain.NewUniform(seed), nil
	case "perlin":
		return grain.NewPerlin(seed, 0), nil
	default:
		return nil, fmt.Errorf("unsupported grain source %q: must be 'uniform' or 'perlin'", name)
	}
}
