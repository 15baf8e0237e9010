package detection

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/menta2k/image-cropper/pkg/types"
)

// fakeClient is a canned VisionClient for tests.
type fakeClient struct {
	result *types.AnalysisResult
	reply  string
	err    error
}

func (f *fakeClient) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return f.reply, f.err
}

func (f *fakeClient) AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Return a copy so the suggester's clamping cannot leak between tests
	r := *f.result
	return &r, nil
}

func subjectAt(cx, cy float64) *types.AnalysisResult {
	return &types.AnalysisResult{
		Primary: types.Primary{
			Label:      "dog",
			Confidence: 0.9,
			Box:        types.Box{X: cx - 0.1, Y: cy - 0.1, W: 0.2, H: 0.2},
			Cx:         cx,
			Cy:         cy,
		},
		Description: "a dog in a field",
		Tags:        []string{"Dog", "field", "dog", " outdoor "},
	}
}

func TestDetectSubject(t *testing.T) {
	s := NewSuggester(&fakeClient{result: subjectAt(0.5, 0.5)})

	result, err := s.DetectSubject(context.Background(), "test-model", "b64")
	if err != nil {
		t.Fatalf("DetectSubject failed: %v", err)
	}
	if result.Primary.Label != "dog" {
		t.Errorf("Expected label 'dog', got %q", result.Primary.Label)
	}

	// Tags are lowercased, trimmed and deduplicated
	want := []string{"dog", "field", "outdoor"}
	if len(result.Tags) != len(want) {
		t.Fatalf("Expected %d tags, got %v", len(want), result.Tags)
	}
	for i, tag := range want {
		if result.Tags[i] != tag {
			t.Errorf("Expected tag %q at %d, got %q", tag, i, result.Tags[i])
		}
	}
}

func TestDetectSubjectClampsCoordinates(t *testing.T) {
	out := subjectAt(0.5, 0.5)
	out.Primary.Box = types.Box{X: -0.2, Y: 0.9, W: 2.0, H: 0.5}
	out.Primary.Cx = 1.4
	out.Primary.Cy = -0.1
	s := NewSuggester(&fakeClient{result: out})

	result, err := s.DetectSubject(context.Background(), "test-model", "b64")
	if err != nil {
		t.Fatalf("DetectSubject failed: %v", err)
	}
	b := result.Primary.Box
	if b.X != 0 || b.Y != 0.9 || b.W != 1.0 || math.Abs(b.H-0.1) > 1e-9 {
		t.Errorf("Expected box clamped to the unit square, got %+v", b)
	}
	if result.Primary.Cx != 1.0 || result.Primary.Cy != 0.0 {
		t.Errorf("Expected center clamped, got (%f,%f)", result.Primary.Cx, result.Primary.Cy)
	}
}

func TestSuggestCrop(t *testing.T) {
	s := NewSuggester(&fakeClient{result: subjectAt(0.5, 0.5)})

	rect, result, err := s.SuggestCrop(context.Background(), "test-model", "b64", 1.0, 1000, 800, 1.0)
	if err != nil {
		t.Fatalf("SuggestCrop failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected detection result alongside the rectangle")
	}
	if rect.Width() != 800 || rect.Height() != 800 {
		t.Errorf("Expected 800x800 square around the centered subject, got %fx%f",
			rect.Width(), rect.Height())
	}
	if rect.Min.X < 0 || rect.Max.X > 1000 || rect.Min.Y < 0 || rect.Max.Y > 800 {
		t.Errorf("Expected rectangle inside the image, got %v", rect)
	}
}

func TestSuggestCropOffCenterSubject(t *testing.T) {
	s := NewSuggester(&fakeClient{result: subjectAt(0.2, 0.3)})

	rect, _, err := s.SuggestCrop(context.Background(), "test-model", "b64", 16.0/9.0, 1920, 1080, 1.0)
	if err != nil {
		t.Fatalf("SuggestCrop failed: %v", err)
	}
	if math.Abs(rect.AspectRatio()-16.0/9.0) > 1e-6 {
		t.Errorf("Expected 16:9 suggestion, got ratio %f", rect.AspectRatio())
	}
	if rect.Min.X < 0 || rect.Max.X > 1920 || rect.Min.Y < 0 || rect.Max.Y > 1080 {
		t.Errorf("Expected rectangle inside the image, got %v", rect)
	}
}

func TestSuggestCropUnconstrained(t *testing.T) {
	s := NewSuggester(&fakeClient{result: subjectAt(0.5, 0.5)})

	// targetRatio <= 0 returns the subject box itself in pixels
	rect, _, err := s.SuggestCrop(context.Background(), "test-model", "b64", 0, 1000, 800, 1.0)
	if err != nil {
		t.Fatalf("SuggestCrop failed: %v", err)
	}
	if math.Abs(rect.Min.X-400) > 1e-9 || math.Abs(rect.Min.Y-320) > 1e-9 ||
		math.Abs(rect.Width()-200) > 1e-9 || math.Abs(rect.Height()-160) > 1e-9 {
		t.Errorf("Expected the subject box (400,320) 200x160, got %v", rect)
	}
}

func TestSuggestCropFallsBackToBoxCenter(t *testing.T) {
	out := subjectAt(0.5, 0.5)
	out.Primary.Cx = 0
	out.Primary.Cy = 0
	out.Primary.Box = types.Box{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}
	s := NewSuggester(&fakeClient{result: out})

	rect, _, err := s.SuggestCrop(context.Background(), "test-model", "b64", 1.0, 1000, 1000, 1.0)
	if err != nil {
		t.Fatalf("SuggestCrop failed: %v", err)
	}
	// Center (0,0) means unset; the box center (0.5, 0.5) is used instead
	if c := rect.Center(); math.Abs(c.X-500) > 1e-9 || math.Abs(c.Y-500) > 1e-9 {
		t.Errorf("Expected suggestion centered at (500,500), got (%f,%f)", c.X, c.Y)
	}
}

func TestSuggestCropInvalidDimensions(t *testing.T) {
	s := NewSuggester(&fakeClient{result: subjectAt(0.5, 0.5)})

	if _, _, err := s.SuggestCrop(context.Background(), "test-model", "b64", 1.0, 0, 800, 1.0); err == nil {
		t.Error("Expected error for zero image width")
	}
}

func TestSuggestCropClientError(t *testing.T) {
	s := NewSuggester(&fakeClient{err: fmt.Errorf("model offline")})

	if _, _, err := s.SuggestCrop(context.Background(), "test-model", "b64", 1.0, 1000, 800, 1.0); err == nil {
		t.Error("Expected error to propagate from the client")
	}
}

func TestTestVision(t *testing.T) {
	s := NewSuggester(&fakeClient{reply: "a photo of a dog"})

	reply, err := s.TestVision(context.Background(), "test-model", "b64")
	if err != nil {
		t.Fatalf("TestVision failed: %v", err)
	}
	if reply != "a photo of a dog" {
		t.Errorf("Expected the model reply, got %q", reply)
	}
}
