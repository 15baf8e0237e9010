package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/internal/config"
	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/client"
	"github.com/menta2k/image-cropper/pkg/controller"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/detection"
	"github.com/menta2k/image-cropper/pkg/geometry"
	"github.com/menta2k/image-cropper/pkg/llamacpp"
	"github.com/menta2k/image-cropper/pkg/ollama"
	"github.com/menta2k/image-cropper/pkg/ratio"
)

func main() {
	var in, outDir, cfgPath string
	var rectSpec, mode string
	var portrait bool
	var suggest bool
	var backend, url, model, sendFmt string
	var sendSize, sendQ int
	var zoom float64
	var ext string
	var quality int
	var lossless bool
	var debug bool
	var dbgext string

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/bmp/webp)")
	flag.StringVar(&outDir, "out", "", "output directory (default from config)")
	flag.StringVar(&cfgPath, "config", "", "config file path (JSON)")

	flag.StringVar(&rectSpec, "rect", "", "explicit crop rectangle as x,y,w,h in image pixels")
	flag.StringVar(&mode, "mode", "", "aspect ratio mode: free|original|W:H (e.g. 16:9)")
	flag.BoolVar(&portrait, "portrait", false, "swap the ratio to portrait orientation")

	flag.BoolVar(&suggest, "suggest", false, "ask a vision model to suggest the crop rectangle")
	flag.StringVar(&backend, "backend", "", "suggestion backend: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&model, "model", "", "vision model name")
	flag.StringVar(&sendFmt, "sendfmt", "", "format sent to the model: jpg|png")
	flag.IntVar(&sendSize, "sendsize", 0, "max long side sent to the model (px), 0=config default")
	flag.IntVar(&sendQ, "sendq", 0, "JPEG quality for the image sent to the model (1-100)")
	flag.Float64Var(&zoom, "zoom", 0, "shrink factor for the suggested crop (0.01..1.0)")

	flag.StringVar(&ext, "ext", "", "output format: jpg|png|bmp|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")

	flag.BoolVar(&debug, "debug", false, "also write a preview overlay with the crop rectangle drawn in")
	flag.StringVar(&dbgext, "dbgext", "png", "preview overlay format: png|jpg|bmp|webp")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-rect x,y,w,h | -suggest] [-mode 16:9] [-out outdir] [-ext jpg|png|bmp|webp]", filepath.Base(os.Args[0]))
	}

	cfg := loadConfig(cfgPath)
	applyOverrides(cfg, outDir, mode, portrait, backend, url, model, sendFmt, sendSize, sendQ, zoom, ext, quality, lossless)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	cropTool := imagecropper.NewWithConfig(controller.Config{
		HandleTolerance: cfg.Controller.HandleTolerance,
		MinDimension:    cfg.Controller.MinDimension,
	})

	if err := cropTool.LoadImage(in); err != nil {
		log.Fatal(err)
	}
	info := cropTool.Info()
	log.Printf("loaded %s: %dx%d (ratio %.3f)", in, info.Width, info.Height, info.AspectRatio)

	m, err := cfg.Mode()
	if err != nil {
		log.Fatal(err)
	}
	cropTool.SetMode(m)

	switch {
	case rectSpec != "":
		rect, err := parseRect(rectSpec)
		if err != nil {
			log.Fatal(err)
		}
		cropTool.Controller().SetRectangle(rect)
	case suggest:
		rect, err := suggestRect(cropTool, cfg, m)
		if err != nil {
			log.Fatal(err)
		}
		cropTool.Controller().SetRectangle(rect)
	}

	sel := cropTool.CropRectangle()
	log.Printf("crop rectangle: (%.0f,%.0f)-(%.0f,%.0f) mode=%s",
		sel.Min.X, sel.Min.Y, sel.Max.X, sel.Max.Y, cropTool.Controller().Mode())

	if err := utils.EnsureDir(cfg.Export.OutputDir); err != nil {
		log.Fatal(err)
	}

	outPath := utils.GenerateOutputFilename(in, cfg.Export.OutputDir, "", cfg.Export.Suffix, cfg.Export.Format)
	opts := cropper.ExportOptions{
		Format:   cfg.Export.Format,
		Quality:  cfg.Export.Quality,
		Lossless: cfg.Export.Lossless,
	}
	result, err := cropTool.SaveCrop(outPath, opts)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%dx%d)", outPath, result.Region.Dx(), result.Region.Dy())

	if debug {
		overlay, err := cropTool.PreviewOverlay()
		if err != nil {
			log.Fatal(err)
		}
		dbgPath := utils.GenerateOutputFilename(in, cfg.Export.OutputDir, "", "_overlay", dbgext)
		if err := cropper.Save(overlay, dbgPath, cropper.ExportOptions{Format: dbgext, Quality: cfg.Export.Quality}); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", dbgPath)
	}
}

// loadConfig reads the config file when given, otherwise the defaults.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// applyOverrides copies non-zero flag values over the configuration.
func applyOverrides(cfg *config.Config, outDir, mode string, portrait bool, backend, url, model, sendFmt string, sendSize, sendQ int, zoom float64, ext string, quality int, lossless bool) {
	if outDir != "" {
		cfg.Export.OutputDir = outDir
	}
	if mode != "" {
		cfg.Ratio.Mode = mode
	}
	if portrait {
		cfg.Ratio.Portrait = true
	}
	if backend != "" {
		cfg.Suggest.Backend = backend
	}
	if url != "" {
		cfg.Suggest.URL = url
	}
	if model != "" {
		cfg.Suggest.Model = model
	}
	if sendFmt != "" {
		cfg.Suggest.SendFormat = sendFmt
	}
	if sendSize > 0 {
		cfg.Suggest.SendMaxDim = sendSize
	}
	if sendQ > 0 {
		cfg.Suggest.SendQuality = sendQ
	}
	if zoom > 0 {
		cfg.Suggest.Zoom = zoom
	}
	if ext != "" {
		cfg.Export.Format = ext
	}
	if quality > 0 {
		cfg.Export.Quality = quality
	}
	if lossless {
		cfg.Export.Lossless = true
	}
}

// suggestRect asks the configured vision backend for a crop suggestion.
func suggestRect(cropTool *imagecropper.Cropper, cfg *config.Config, m ratio.Mode) (geometry.Rect, error) {
	var visionClient client.VisionClient
	var err error

	switch cfg.Suggest.Backend {
	case "ollama":
		url := cfg.Suggest.URL
		if url == "" {
			url = "http://localhost:11434"
		}
		visionClient, err = ollama.NewClient(url)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("failed to create Ollama client: %w", err)
		}
	case "llamacpp":
		url := cfg.Suggest.URL
		if url == "" {
			url = "http://localhost:8080"
		}
		visionClient, err = llamacpp.NewClient(url)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
	default:
		return geometry.Rect{}, fmt.Errorf("unknown backend: %s (use 'ollama' or 'llamacpp')", cfg.Suggest.Backend)
	}

	info := cropTool.Info()
	imgB64, err := cropTool.PrepareForModel(cfg.Suggest.SendFormat, cfg.Suggest.SendMaxDim, cfg.Suggest.SendQuality)
	if err != nil {
		return geometry.Rect{}, err
	}

	targetRatio, _ := m.Ratio(float64(info.Width), float64(info.Height))
	suggester := detection.NewSuggester(visionClient)
	rect, result, err := suggester.SuggestCrop(context.Background(), cfg.Suggest.Model, imgB64,
		targetRatio, float64(info.Width), float64(info.Height), cfg.Suggest.Zoom)
	if err != nil {
		return geometry.Rect{}, err
	}
	log.Printf("subject: %q (confidence %.2f) %s", result.Primary.Label, result.Primary.Confidence, result.Description)
	return rect, nil
}

// parseRect parses an "x,y,w,h" rectangle in image pixels.
func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: expected x,y,w,h", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return geometry.Rect{}, fmt.Errorf("invalid rectangle %q: width and height must be positive", s)
	}
	return geometry.RectFromMinMax(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), nil
}
