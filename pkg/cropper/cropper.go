// Package cropper extracts the selected pixel region from an image and
// encodes it to disk in the supported output formats.
package cropper

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"

	"github.com/menta2k/image-cropper/pkg/geometry"
)

// ExportOptions controls the output encoding.
type ExportOptions struct {
	// Format is one of "png", "jpg", "jpeg", "bmp", "webp". Empty means
	// derive from the output path extension.
	Format string
	// Quality applies to JPEG and lossy WebP output (1-100).
	Quality int
	// Lossless selects lossless WebP encoding.
	Lossless bool
}

// DefaultExportOptions returns the standard export settings.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Quality: 90}
}

// CropResult contains the result of a cropping operation.
type CropResult struct {
	Image       image.Image
	Region      image.Rectangle
	AspectRatio float64
}

// Crop extracts the region described by rect (continuous image-pixel
// coordinates) from img. The rectangle is rounded to whole pixels and
// intersected with the image bounds; an empty intersection is an error.
func Crop(img image.Image, rect geometry.Rect) (CropResult, error) {
	rect = rect.Normalize()
	region := image.Rect(
		int(rect.Min.X+0.5), int(rect.Min.Y+0.5),
		int(rect.Max.X+0.5), int(rect.Max.Y+0.5),
	).Intersect(img.Bounds())
	if region.Empty() {
		return CropResult{}, fmt.Errorf("crop rectangle is outside image bounds")
	}

	cropped := imaging.Crop(img, region)
	return CropResult{
		Image:       cropped,
		Region:      region,
		AspectRatio: float64(region.Dx()) / float64(region.Dy()),
	}, nil
}

// Save encodes img to path using the format from opts, falling back to the
// path extension.
func Save(img image.Image, path string, opts ExportOptions) error {
	format := strings.ToLower(opts.Format)
	if format == "" {
		if i := strings.LastIndex(path, "."); i >= 0 {
			format = strings.ToLower(path[i+1:])
		}
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultExportOptions().Quality
	}

	switch format {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(opts.Quality)})
	case "bmp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		return bmp.Encode(f, img)
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(opts.Quality))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Export crops rect out of img and saves it to path in one step.
func Export(img image.Image, rect geometry.Rect, path string, opts ExportOptions) (CropResult, error) {
	result, err := Crop(img, rect)
	if err != nil {
		return CropResult{}, err
	}
	if err := Save(result.Image, path, opts); err != nil {
		return CropResult{}, fmt.Errorf("failed to save crop: %w", err)
	}
	return result, nil
}
