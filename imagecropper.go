// Package imagecropper provides interactive crop-rectangle selection and
// export for raster images.
//
// The package tracks a crop rectangle over a loaded image, interprets
// pointer-drag gestures on eight resize handles plus a move gesture,
// enforces aspect-ratio constraints (free, original, presets, custom),
// keeps the rectangle inside the image bounds, and extracts/encodes the
// selected pixel region.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		imagecropper "github.com/menta2k/image-cropper"
//		"github.com/menta2k/image-cropper/pkg/cropper"
//		"github.com/menta2k/image-cropper/pkg/geometry"
//		"github.com/menta2k/image-cropper/pkg/ratio"
//	)
//
//	func main() {
//		cropTool := imagecropper.New()
//
//		// Load an image; the crop rectangle starts covering it fully
//		if err := cropTool.LoadImage("photo.jpg"); err != nil {
//			log.Fatal(err)
//		}
//
//		// Constrain the selection to 16:9
//		cropTool.SetMode(ratio.R16x9)
//
//		// Drive the selection with pointer events (image-pixel coords)
//		ctrl := cropTool.Controller()
//		ctrl.PointerDown(geometry.Pt(0, 0))
//		ctrl.PointerMove(geometry.Pt(640, 480))
//		ctrl.PointerUp()
//
//		// Export the selected region
//		opts := cropper.DefaultExportOptions()
//		if _, err := cropTool.SaveCrop("photo_169.jpg", opts); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of five core components:
//
// 1. Geometry (pkg/geometry): continuous rectangle math (normalize, clamp,
// inscribe)
// 2. Ratio (pkg/ratio): aspect-ratio modes and the drive-axis constraint
// 3. Handles (pkg/handles): pointer-to-handle hit-testing
// 4. Controller (pkg/controller): the Idle/Dragging gesture state machine
// 5. Transform (pkg/transform): screen <-> image coordinate mapping
//
// Around the core, pkg/processing loads images (files, URLs, WebP) and
// pkg/cropper extracts and encodes the selected region (PNG/JPEG/BMP/WebP).
// The optional pkg/detection suggester asks a vision model (Ollama or
// llama.cpp) where the subject is and proposes a matching crop rectangle.
package imagecropper

import (
	"fmt"
	"image"

	"github.com/menta2k/image-cropper/pkg/controller"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/geometry"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/ratio"
)

// Version of the image cropper library
const Version = "1.0.0"

// Cropper is the high-level interface tying the crop controller to image
// loading and export.
type Cropper struct {
	processor *processing.Processor
	ctrl      *controller.Controller
	img       image.Image
}

// New creates a Cropper with default controller configuration.
func New() *Cropper {
	return NewWithConfig(controller.DefaultConfig())
}

// NewWithConfig creates a Cropper with a custom controller configuration.
func NewWithConfig(cfg controller.Config) *Cropper {
	return &Cropper{
		processor: processing.NewProcessor(),
		ctrl:      controller.New(cfg),
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

// LoadImage loads an image from a file path or URL and resets the crop
// rectangle to cover it fully, refitted to the active ratio mode.
func (c *Cropper) LoadImage(source string) error {
	img, err := c.processor.LoadImageSmart(source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	c.SetImage(img)
	return nil
}

// SetImage installs an already decoded image.
func (c *Cropper) SetImage(img image.Image) {
	c.img = img
	if img == nil {
		c.ctrl.SetImageBounds(0, 0)
		return
	}
	b := img.Bounds()
	c.ctrl.SetImageBounds(float64(b.Dx()), float64(b.Dy()))
}

// Image returns the loaded image, nil when none is loaded.
func (c *Cropper) Image() image.Image {
	return c.img
}

// Info returns basic information about the loaded image.
func (c *Cropper) Info() ImageInfo {
	if c.img == nil {
		return ImageInfo{}
	}
	b := c.img.Bounds()
	w, h := b.Dx(), b.Dy()
	return ImageInfo{
		Width:       w,
		Height:      h,
		AspectRatio: float64(w) / float64(h),
		Area:        w * h,
	}
}

// Controller exposes the crop-rectangle state machine for pointer events.
func (c *Cropper) Controller() *controller.Controller {
	return c.ctrl
}

// SetMode installs an aspect-ratio mode and re-validates the rectangle.
func (c *Cropper) SetMode(m ratio.Mode) {
	c.ctrl.SetMode(m)
}

// ToggleOrientation swaps the active mode between landscape and portrait.
func (c *Cropper) ToggleOrientation() {
	c.ctrl.ToggleOrientation()
}

// CropRectangle returns the current selection in image-pixel coordinates.
func (c *Cropper) CropRectangle() geometry.Rect {
	return c.ctrl.Rectangle()
}

// Crop extracts the currently selected region from the loaded image.
func (c *Cropper) Crop() (cropper.CropResult, error) {
	if c.img == nil {
		return cropper.CropResult{}, fmt.Errorf("no image loaded")
	}
	return cropper.Crop(c.img, c.ctrl.Rectangle())
}

// SaveCrop extracts the selected region and encodes it to path.
func (c *Cropper) SaveCrop(path string, opts cropper.ExportOptions) (cropper.CropResult, error) {
	if c.img == nil {
		return cropper.CropResult{}, fmt.Errorf("no image loaded")
	}
	return cropper.Export(c.img, c.ctrl.Rectangle(), path, opts)
}

// PrepareForModel encodes the loaded image as base64 for a vision model,
// downscaled so its long side does not exceed maxDim.
func (c *Cropper) PrepareForModel(format string, maxDim, quality int) (string, error) {
	if c.img == nil {
		return "", fmt.Errorf("no image loaded")
	}
	return c.processor.PrepareImageForModel(c.img, format, maxDim, quality)
}

// PreviewOverlay renders the current selection onto a clone of the loaded
// image for debug output.
func (c *Cropper) PreviewOverlay() (image.Image, error) {
	if c.img == nil {
		return nil, fmt.Errorf("no image loaded")
	}
	return c.processor.PreviewOverlay(c.img, c.ctrl.Rectangle()), nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
