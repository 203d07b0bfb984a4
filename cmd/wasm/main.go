//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/filmlook/internal/filmlook"
	"github.com/MeKo-Tech/filmlook/internal/raster"
)

// ProcessRequest carries the look parameters from JS. Missing fields keep
// their defaults.
type ProcessRequest struct {
	ToneA             *float64 `json:"toneA"`
	GlowThreshold     *float64 `json:"glowThreshold"`
	GlowStrength      *float64 `json:"glowStrength"`
	GlowBlur          *float64 `json:"glowBlur"`
	GrainStrength     *float64 `json:"grainStrength"`
	SoftFocusStrength *float64 `json:"softFocusStrength"`
	SoftFocusRadius   *float64 `json:"softFocusRadius"`
}

// processImage is called from JavaScript with
// (width, height, Uint8ClampedArray rgba, paramsJSON) and returns a
// Uint8Array of processed RGBA bytes, or a map with an "error" key.
func processImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return map[string]string{"error": "expected (width, height, pixels, paramsJSON)"}
	}

	w := args[0].Int()
	h := args[1].Int()

	rgba := make([]byte, args[2].Length())
	js.CopyBytesToGo(rgba, args[2])

	var req ProcessRequest
	if err := json.Unmarshal([]byte(args[3].String()), &req); err != nil {
		return map[string]string{"error": fmt.Sprintf("failed to parse params: %v", err)}
	}

	params := filmlook.DefaultParams()
	applyOverrides(&params, req)

	src, err := raster.FromBytes(w, h, rgba)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}

	proc := filmlook.NewProcessor(filmlook.Options{Workers: 1})
	out, err := proc.Process(src, params)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}

	bytes := out.Bytes()
	dst := js.Global().Get("Uint8Array").New(len(bytes))
	js.CopyBytesToJS(dst, bytes)
	return dst
}

func applyOverrides(params *filmlook.Params, req ProcessRequest) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&params.ToneA, req.ToneA)
	set(&params.GlowThreshold, req.GlowThreshold)
	set(&params.GlowStrength, req.GlowStrength)
	set(&params.GlowBlur, req.GlowBlur)
	set(&params.GrainStrength, req.GrainStrength)
	set(&params.SoftFocusStrength, req.SoftFocusStrength)
	set(&params.SoftFocusRadius, req.SoftFocusRadius)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("filmlookProcess", js.FuncOf(processImage))

	fmt.Println("filmlook WASM module loaded")
	<-c
}
