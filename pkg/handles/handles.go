// Package handles maps pointer positions to the nine interaction zones of a
// crop rectangle: eight resize handles on the corners and edges, plus the
// body used for moving the whole rectangle.
package handles

import (
	"math"

	"github.com/menta2k/image-cropper/pkg/geometry"
)

// Handle identifies one interaction zone of the crop rectangle.
type Handle int

const (
	None Handle = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
	Top
	Bottom
	Left
	Right
	Body
)

// String returns a human-readable handle name.
func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	case Body:
		return "body"
	default:
		return "none"
	}
}

// IsCorner reports whether h is one of the four corner handles.
func (h Handle) IsCorner() bool {
	switch h {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return true
	}
	return false
}

// IsEdge reports whether h is one of the four edge handles.
func (h Handle) IsEdge() bool {
	switch h {
	case Top, Bottom, Left, Right:
		return true
	}
	return false
}

// Resizes reports whether h drives a resize (any handle except Body/None).
func (h Handle) Resizes() bool {
	return h.IsCorner() || h.IsEdge()
}

// HitTest returns the handle under the pointer position p for the
// rectangle r with a pixel tolerance tol.
//
// Each corner owns a square zone of side 2*tol centered on it; each edge
// owns a strip of width 2*tol along its length. Corner zones take priority
// over edge strips, and when zones overlap on a very small rectangle the
// first match wins in the order TopLeft, TopRight, BottomLeft, BottomRight,
// Top, Bottom, Left, Right, Body. A pointer outside the rectangle and
// beyond every tolerance zone yields None.
func HitTest(p geometry.Point, r geometry.Rect, tol float64) Handle {
	r = r.Normalize()

	corners := []struct {
		h Handle
		c geometry.Point
	}{
		{TopLeft, r.TopLeft()},
		{TopRight, r.TopRight()},
		{BottomLeft, r.BottomLeft()},
		{BottomRight, r.BottomRight()},
	}
	for _, z := range corners {
		if math.Abs(p.X-z.c.X) <= tol && math.Abs(p.Y-z.c.Y) <= tol {
			return z.h
		}
	}

	withinX := p.X >= r.Min.X && p.X <= r.Max.X
	withinY := p.Y >= r.Min.Y && p.Y <= r.Max.Y
	if withinX && math.Abs(p.Y-r.Min.Y) <= tol {
		return Top
	}
	if withinX && math.Abs(p.Y-r.Max.Y) <= tol {
		return Bottom
	}
	if withinY && math.Abs(p.X-r.Min.X) <= tol {
		return Left
	}
	if withinY && math.Abs(p.X-r.Max.X) <= tol {
		return Right
	}

	if r.Contains(p) {
		return Body
	}
	return None
}

// Anchor returns the point of r that stays fixed while h is dragged: the
// opposite corner for corner handles, and the opposite edge paired with
// the rectangle's minimum coordinate on the perpendicular axis for edge
// handles. Body and None have no resize anchor and return the top-left
// corner.
func Anchor(h Handle, r geometry.Rect) geometry.Point {
	r = r.Normalize()
	switch h {
	case TopLeft:
		return r.BottomRight()
	case TopRight:
		return r.BottomLeft()
	case BottomLeft:
		return r.TopRight()
	case BottomRight:
		return r.TopLeft()
	case Left:
		return geometry.Pt(r.Max.X, r.Min.Y)
	case Right:
		return r.TopLeft()
	case Top:
		return r.BottomLeft()
	case Bottom:
		return r.TopLeft()
	default:
		return r.TopLeft()
	}
}
