// Package transform converts between screen (widget) coordinates and
// image-pixel coordinates for an image displayed scale-to-fit and centered
// inside a viewport, with letterboxing on the short axis.
package transform

import (
	"math"

	"github.com/menta2k/image-cropper/pkg/geometry"
)

// ViewTransform is a pure value describing the placement of an image inside
// a viewport. ScreenToImage and ImageToScreen are exact inverses of each
// other up to floating-point epsilon.
type ViewTransform struct {
	scale  float64
	origin geometry.Point // screen position of the image's (0,0) pixel
	imageW float64
	imageH float64
}

// FitImage computes the transform that displays an image of the given
// native size inside viewport at uniform scale-to-fit, centered on both
// axes. Degenerate inputs yield the identity transform.
func FitImage(viewport geometry.Rect, imageW, imageH float64) ViewTransform {
	if imageW <= 0 || imageH <= 0 || viewport.Empty() {
		return ViewTransform{scale: 1, imageW: imageW, imageH: imageH}
	}
	scale := math.Min(viewport.Width()/imageW, viewport.Height()/imageH)
	displayW := imageW * scale
	displayH := imageH * scale
	origin := geometry.Pt(
		viewport.Min.X+(viewport.Width()-displayW)/2,
		viewport.Min.Y+(viewport.Height()-displayH)/2,
	)
	return ViewTransform{scale: scale, origin: origin, imageW: imageW, imageH: imageH}
}

// Scale returns the uniform screen-pixels-per-image-pixel factor.
func (t ViewTransform) Scale() float64 {
	return t.scale
}

// ImageFrame returns the screen rectangle the image occupies.
func (t ViewTransform) ImageFrame() geometry.Rect {
	return geometry.RectFromMinMax(
		t.origin.X, t.origin.Y,
		t.origin.X+t.imageW*t.scale, t.origin.Y+t.imageH*t.scale,
	)
}

// ScreenToImage maps a screen position to image-pixel coordinates.
func (t ViewTransform) ScreenToImage(p geometry.Point) geometry.Point {
	return geometry.Pt((p.X-t.origin.X)/t.scale, (p.Y-t.origin.Y)/t.scale)
}

// ImageToScreen maps an image-pixel position to screen coordinates.
func (t ViewTransform) ImageToScreen(p geometry.Point) geometry.Point {
	return geometry.Pt(p.X*t.scale+t.origin.X, p.Y*t.scale+t.origin.Y)
}

// ScreenRectToImage maps a screen rectangle to image space.
func (t ViewTransform) ScreenRectToImage(r geometry.Rect) geometry.Rect {
	return geometry.Rect{Min: t.ScreenToImage(r.Min), Max: t.ScreenToImage(r.Max)}
}

// ImageRectToScreen maps an image-space rectangle to screen space, used by
// the rendering collaborator to draw the overlay and handle markers.
func (t ViewTransform) ImageRectToScreen(r geometry.Rect) geometry.Rect {
	return geometry.Rect{Min: t.ImageToScreen(r.Min), Max: t.ImageToScreen(r.Max)}
}

// ScaleToleranceToImage converts a hit tolerance expressed in screen pixels
// into image pixels, so handle zones feel the same size regardless of zoom.
func (t ViewTransform) ScaleToleranceToImage(tol float64) float64 {
	if t.scale <= 0 {
		return tol
	}
	return tol / t.scale
}
