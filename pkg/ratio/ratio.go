// Package ratio implements the aspect-ratio constraint applied to the crop
// rectangle: free selection, the image's original ratio, a set of common
// presets, or a custom width:height pair, with a portrait/landscape
// orientation toggle.
package ratio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/menta2k/image-cropper/pkg/geometry"
)

// Kind enumerates the constraint variants.
type Kind int

const (
	KindFree Kind = iota
	KindOriginal
	KindPreset
	KindCustom
)

// Mode is the active aspect-ratio constraint. The zero value is Free.
//
// Preset and custom modes store their ratio as integer components so that
// ToggleOrientation (a component swap) round-trips exactly; Original tracks
// orientation with a flag for the same reason.
type Mode struct {
	Kind    Kind
	W, H    int  // ratio components for preset and custom modes
	Flipped bool // portrait orientation for Original
}

// Free places no constraint on the rectangle's proportions.
var Free = Mode{Kind: KindFree}

// Original locks the rectangle to the loaded image's own aspect ratio.
var Original = Mode{Kind: KindOriginal}

// Common presets, landscape and portrait.
var (
	Square = Mode{Kind: KindPreset, W: 1, H: 1}
	R3x2   = Mode{Kind: KindPreset, W: 3, H: 2}
	R4x3   = Mode{Kind: KindPreset, W: 4, H: 3}
	R16x9  = Mode{Kind: KindPreset, W: 16, H: 9}
	R16x10 = Mode{Kind: KindPreset, W: 16, H: 10}
	R2x3   = Mode{Kind: KindPreset, W: 2, H: 3}
	R3x4   = Mode{Kind: KindPreset, W: 3, H: 4}
	R9x16  = Mode{Kind: KindPreset, W: 9, H: 16}
	R10x16 = Mode{Kind: KindPreset, W: 10, H: 16}
)

// Presets returns the built-in preset modes in display order.
func Presets() []Mode {
	return []Mode{Square, R3x2, R4x3, R16x9, R16x10, R2x3, R3x4, R9x16, R10x16}
}

// Custom builds a custom w:h mode. Zero or negative components are rejected
// here so the controller never sees an invalid ratio.
func Custom(w, h int) (Mode, error) {
	if w <= 0 || h <= 0 {
		return Mode{}, fmt.Errorf("invalid aspect ratio %d:%d: components must be positive", w, h)
	}
	return Mode{Kind: KindCustom, W: w, H: h}, nil
}

// String returns a display label for the mode.
func (m Mode) String() string {
	switch m.Kind {
	case KindFree:
		return "free"
	case KindOriginal:
		if m.Flipped {
			return "original (portrait)"
		}
		return "original"
	default:
		return fmt.Sprintf("%d:%d", m.W, m.H)
	}
}

// Constrained reports whether the mode imposes a ratio.
func (m Mode) Constrained() bool {
	return m.Kind != KindFree
}

// Ratio resolves the numeric width/height ratio. Original needs the image
// dimensions; Free reports ok=false.
func (m Mode) Ratio(imageW, imageH float64) (r float64, ok bool) {
	switch m.Kind {
	case KindFree:
		return 0, false
	case KindOriginal:
		if imageW <= 0 || imageH <= 0 {
			return 0, false
		}
		if m.Flipped {
			return imageH / imageW, true
		}
		return imageW / imageH, true
	default:
		return float64(m.W) / float64(m.H), true
	}
}

// Swapped returns the mode with its orientation toggled. Applying Swapped
// twice yields the original mode exactly. Free has no orientation and is
// returned unchanged.
func (m Mode) Swapped() Mode {
	switch m.Kind {
	case KindFree:
		return m
	case KindOriginal:
		m.Flipped = !m.Flipped
		return m
	default:
		m.W, m.H = m.H, m.W
		return m
	}
}

// Parse resolves a mode label: "free", "original", or a "W:H" pair such as
// "16:9". Ratio pairs matching a preset return that preset; anything else
// becomes a custom mode.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free":
		return Free, nil
	case "original":
		return Original, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Mode{}, fmt.Errorf("invalid aspect ratio %q: expected free, original or W:H", s)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return Mode{}, fmt.Errorf("invalid aspect ratio %q: expected free, original or W:H", s)
	}
	for _, p := range Presets() {
		if p.W == w && p.H == h {
			return p, nil
		}
	}
	return Custom(w, h)
}

// Driver names the axis the user is actively controlling during a resize.
// It is determined by the active handle, never by comparing magnitudes, so
// a constrained drag cannot oscillate between axes.
type Driver int

const (
	// DriveWidth derives height from width. Corner handles use this by
	// convention; Left and Right handles drive width naturally.
	DriveWidth Driver = iota
	// DriveHeight derives width from height (Top and Bottom handles).
	DriveHeight
)

// DeriveSize corrects a proposed (width, height) pair to the target ratio r,
// keeping the driving axis and recomputing the other.
func DeriveSize(width, height float64, d Driver, r float64) (float64, float64) {
	if r <= 0 {
		return width, height
	}
	if d == DriveHeight {
		return height * r, height
	}
	return width, width / r
}

// Refit adjusts an existing rectangle to a newly selected ratio r. The
// result is the largest rectangle of that ratio inscribed in current,
// sharing its center, clamped to bounds. If the inscribed rectangle would
// collapse below minDim on either axis, the largest rectangle of the
// correct ratio centered in bounds is used instead.
func Refit(current, bounds geometry.Rect, r, minDim float64) geometry.Rect {
	if r <= 0 {
		return current.Normalize().ClampTo(bounds)
	}
	fitted := current.Normalize().Inscribe(r).ClampTo(bounds)
	if fitted.Width() < minDim || fitted.Height() < minDim {
		fitted = bounds.Inscribe(r)
	}
	return fitted
}
