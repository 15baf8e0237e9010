// Package detection turns a vision model's subject detection into a crop
// suggestion: the model locates the dominant subject, and the suggester
// expands that location into the largest rectangle of the requested aspect
// ratio that keeps the subject centered.
package detection

import (
	"context"
	"fmt"
	"strings"

	"github.com/menta2k/image-cropper/pkg/client"
	"github.com/menta2k/image-cropper/pkg/geometry"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks the model for the dominant subject of the image.
const DefaultPrompt = `You are an image subject locator.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
    "cx": 0.0,
    "cy": 0.0
  },
  "description": "short neutral sentence (<= 20 words)",
  "tags": ["tag1", "tag2", "tag3"]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- The box should tightly include the visually dominant subject (prefer people/vehicles/animals; else the most central salient object).
- cx and cy are the box center.
- Description must be brief and factual. Do not guess real identities.
- Tags: lowercase, concise, no punctuation or duplicates.
- If no subject is found, return:
  {
    "primary":{"label":"none","confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.50,"h":0.50},"cx":0.5,"cy":0.5},
    "description":"centered generic scene",
    "tags":["generic","center","scene"]
  }
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Suggester produces crop suggestions from a vision model.
type Suggester struct {
	client    client.VisionClient
	processor *processing.Processor
}

// NewSuggester creates a suggester backed by the given vision client.
func NewSuggester(c client.VisionClient) *Suggester {
	return &Suggester{client: c, processor: processing.NewProcessor()}
}

// DetectSubject asks the model for the primary subject of the image.
func (s *Suggester) DetectSubject(ctx context.Context, model, imageB64 string) (*types.AnalysisResult, error) {
	result, err := s.client.AnalyzeImage(ctx, model, DefaultPrompt, imageB64)
	if err != nil {
		return nil, err
	}
	result.Primary.Box = clampBox(result.Primary.Box)
	result.Primary.Cx = clamp(result.Primary.Cx, 0, 1)
	result.Primary.Cy = clamp(result.Primary.Cy, 0, 1)
	result.Tags = normalizeTags(result.Tags)
	return result, nil
}

// SuggestCrop detects the subject and returns the largest rectangle of the
// target W/H ratio centered on it, in image-pixel coordinates, together
// with the raw detection. The caller typically feeds the rectangle into
// controller.SetRectangle. zoom below 1.0 shrinks the suggestion around
// the subject.
func (s *Suggester) SuggestCrop(ctx context.Context, model, imageB64 string, targetRatio, imgW, imgH, zoom float64) (geometry.Rect, *types.AnalysisResult, error) {
	if imgW <= 0 || imgH <= 0 {
		return geometry.Rect{}, nil, fmt.Errorf("invalid image dimensions %gx%g", imgW, imgH)
	}
	result, err := s.DetectSubject(ctx, model, imageB64)
	if err != nil {
		return geometry.Rect{}, nil, fmt.Errorf("subject detection failed: %w", err)
	}

	cx, cy := result.Primary.Cx, result.Primary.Cy
	if cx == 0 && cy == 0 {
		cx = result.Primary.Box.X + result.Primary.Box.W/2
		cy = result.Primary.Box.Y + result.Primary.Box.H/2
	}
	if targetRatio <= 0 {
		// Unconstrained suggestion: the subject box itself, in pixels.
		b := result.Primary.Box
		return geometry.RectFromMinMax(b.X*imgW, b.Y*imgH, (b.X+b.W)*imgW, (b.Y+b.H)*imgH), result, nil
	}

	rect := s.processor.OptimalCropRect(cx, cy, targetRatio, imgW, imgH, zoom)
	return rect, result, nil
}

// TestVision checks that the model can actually see the image.
func (s *Suggester) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return s.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampBox keeps a normalized box inside the unit square.
func clampBox(b types.Box) types.Box {
	b.X = clamp(b.X, 0, 1)
	b.Y = clamp(b.Y, 0, 1)
	b.W = clamp(b.W, 0, 1-b.X)
	b.H = clamp(b.H, 0, 1-b.Y)
	return b
}

// normalizeTags lowercases, trims and deduplicates the tag list.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
