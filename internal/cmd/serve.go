package cmd

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder for uploads
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/filmlook/internal/filmlook"
	"github.com/MeKo-Tech/filmlook/internal/imageio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the film-look pipeline over HTTP",
	Long: `Run a small HTTP server that accepts an image in the request body on
POST /process, applies the film look with parameters taken from the query
string, and responds with the processed JPEG.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Int("max-dim", 1600, "Downscale uploads so the longer side is at most this (0 disables)")
	serveCmd.Flags().Int("jpeg-quality", imageio.DefaultJPEGQuality, "JPEG quality for responses (1-100)")
	serveCmd.Flags().Int64("max-body-bytes", 32<<20, "Maximum accepted upload size in bytes")
	serveCmd.Flags().IntP("workers", "w", 0, "Parallel workers per request (default: number of CPUs)")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.max_dim", "max-dim")
	mustBind("serve.jpeg_quality", "jpeg-quality")
	mustBind("serve.max_body_bytes", "max-body-bytes")
	mustBind("serve.workers", "workers")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	maxDim := viper.GetInt("serve.max_dim")
	jpegQuality := viper.GetInt("serve.jpeg_quality")
	maxBodyBytes := viper.GetInt64("serve.max_body_bytes")
	workers := viper.GetInt("serve.workers")

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/process", withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleProcess(w, r, maxDim, jpegQuality, maxBodyBytes, workers)
	})))

	logger.Info("filmlook server listening",
		"addr", addr,
		"max_dim", maxDim,
		"jpeg_quality", jpegQuality,
		"workers", workers,
	)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

func handleProcess(w http.ResponseWriter, r *http.Request, maxDim, jpegQuality int, maxBodyBytes int64, workers int) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := filmlook.DefaultParams()
	if err := paramsFromQuery(r, &params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, _, err := image.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to decode image: %v", err), http.StatusBadRequest)
		return
	}
	img = imageio.FitDown(img, maxDim)

	// Fresh processor per request: the grain noise stream is not safe for
	// concurrent draws.
	proc := filmlook.NewProcessor(filmlook.Options{Workers: workers, Logger: logger})

	start := time.Now()
	out, err := proc.ProcessImage(img, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	logger.Info("Processed upload",
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
		"elapsed", time.Since(start).String(),
	)

	w.Header().Set("Content-Type", "image/jpeg")
	if err := jpeg.Encode(w, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// paramsFromQuery overrides params with any of the recognized options present
// in the query string (toneA, glowThreshold, glowStrength, glowBlur,
// grainStrength, softFocusStrength, softFocusRadius).
func paramsFromQuery(r *http.Request, params *filmlook.Params) error {
	fields := map[string]*float64{
		"toneA":             &params.ToneA,
		"glowThreshold":     &params.GlowThreshold,
		"glowStrength":      &params.GlowStrength,
		"glowBlur":          &params.GlowBlur,
		"grainStrength":     &params.GrainStrength,
		"softFocusStrength": &params.SoftFocusStrength,
		"softFocusRadius":   &params.SoftFocusRadius,
	}
	query := r.URL.Query()
	for name, dst := range fields {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
		*dst = v
	}
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
