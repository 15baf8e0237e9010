// Package processing handles image loading (local files and URLs, with WebP
// fallback), preparation of downscaled payloads for vision models, and the
// debug preview overlay for the crop rectangle.
package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-cropper/pkg/geometry"
)

// Processor handles image loading and preparation operations
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// LoadImageFromURL downloads and loads an image from a URL
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "Image-Cropper/1.0 (+https://github.com/menta2k/image-cropper)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %v", err)
	}

	return p.decodeImageFromBytes(imageData)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	low := strings.ToLower(path)
	if strings.HasSuffix(low, ".webp") || strings.Contains(low, ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	} else {
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	reader := bytes.NewReader(data)
	if img, _, err := image.Decode(reader); err == nil {
		return img, nil
	}

	reader = bytes.NewReader(data)
	if img, err := webp.Decode(reader); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// OptimalCropRect computes the largest crop rectangle of the target W/H
// ratio centered as close as possible to the normalized point (cx, cy),
// clamped to the image. zoom below 1.0 shrinks the result around the same
// center. The returned rectangle is in image-pixel coordinates.
func (p *Processor) OptimalCropRect(cx, cy, targetRatio float64, imgW, imgH float64, zoom float64) geometry.Rect {
	if zoom <= 0 {
		zoom = 1
	}
	if targetRatio <= 0 || imgW <= 0 || imgH <= 0 {
		return geometry.RectFromMinMax(0, 0, imgW, imgH)
	}

	// Center in pixels
	px := clamp(cx, 0, 1) * imgW
	py := clamp(cy, 0, 1) * imgH

	// Max half extents allowed by image bounds
	halfWMax := math.Min(px, imgW-px)
	halfHMax := math.Min(py, imgH-py)

	// Width is limited by horizontal bounds AND by vertical bounds scaled
	// by the aspect ratio
	widthPx := math.Min(2*halfWMax, targetRatio*(2*halfHMax)) * clamp(zoom, 0.01, 1.0)
	heightPx := widthPx / targetRatio

	x0 := clamp(px-widthPx/2, 0, imgW-widthPx)
	y0 := clamp(py-heightPx/2, 0, imgH-heightPx)

	return geometry.RectFromMinMax(x0, y0, x0+widthPx, y0+heightPx)
}

// PreviewOverlay clones the image and draws the crop rectangle border plus
// the eight handle markers onto it, for debug output alongside a crop.
func (p *Processor) PreviewOverlay(img image.Image, rect geometry.Rect) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	gold := color.NRGBA{255, 204, 0, 255}
	white := color.NRGBA{255, 255, 255, 255}
	stroke := int(math.Max(2, 0.004*float64(minInt(w, h))))
	marker := int(math.Max(4, 0.008*float64(minInt(w, h))))

	drawRect(nrgba, rect, gold, stroke)

	r := rect.Normalize()
	cx, cy := r.Center().X, r.Center().Y
	markers := []geometry.Point{
		r.TopLeft(), r.TopRight(), r.BottomLeft(), r.BottomRight(),
		geometry.Pt(cx, r.Min.Y), geometry.Pt(cx, r.Max.Y),
		geometry.Pt(r.Min.X, cy), geometry.Pt(r.Max.X, cy),
	}
	for _, m := range markers {
		drawMarker(nrgba, m, marker, white)
	}

	return nrgba
}

// Helper functions
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func drawRect(img *image.NRGBA, r geometry.Rect, c color.NRGBA, stroke int) {
	r = r.Normalize()
	x0, y0 := int(r.Min.X+0.5), int(r.Min.Y+0.5)
	x1, y1 := int(r.Max.X+0.5), int(r.Max.Y+0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawMarker(img *image.NRGBA, p geometry.Point, half int, c color.NRGBA) {
	px, py := int(p.X+0.5), int(p.Y+0.5)
	for y := py - half; y < py+half; y++ {
		drawHLine(img, y, px-half, px+half, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
