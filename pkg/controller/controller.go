// Package controller owns the authoritative crop rectangle and interprets
// pointer gestures on it: dragging any of the eight resize handles, moving
// the rectangle body, applying the active aspect-ratio constraint, and
// keeping the result inside the image bounds at all times.
package controller

import (
	"math"

	"github.com/menta2k/image-cropper/pkg/geometry"
	"github.com/menta2k/image-cropper/pkg/handles"
	"github.com/menta2k/image-cropper/pkg/ratio"
)

// Config holds the controller's interaction parameters. All values are in
// image-pixel units; callers working in screen coordinates should convert
// with transform.ViewTransform first.
type Config struct {
	// HandleTolerance is the half-width of each handle's hit zone.
	HandleTolerance float64
	// MinDimension is the floor enforced on the rectangle's width and
	// height so degenerate zero-area selections cannot occur.
	MinDimension float64
}

// DefaultConfig returns the standard interaction parameters.
func DefaultConfig() Config {
	return Config{
		HandleTolerance: 10,
		MinDimension:    8,
	}
}

// State is the controller's gesture state.
type State int

const (
	Idle State = iota
	Dragging
)

// dragSession is the transient per-gesture state. It exists only between
// PointerDown and PointerUp/PointerCancel and is never persisted.
type dragSession struct {
	handle handles.Handle
	anchor geometry.Point // fixed opposite corner/edge for resize handles
	grab   geometry.Point // pointer offset from rect.Min for body moves
}

// Controller is the crop-rectangle state machine. It is not safe for
// concurrent use; it is designed to run synchronously inside a single
// UI event loop.
type Controller struct {
	cfg      Config
	bounds   geometry.Rect
	rect     geometry.Rect
	mode     ratio.Mode
	state    State
	drag     dragSession
	hasImage bool
}

// New creates a controller with the given configuration. Non-positive
// configuration values fall back to the defaults. No image is loaded yet;
// pointer events are ignored until SetImageBounds is called.
func New(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.HandleTolerance <= 0 {
		cfg.HandleTolerance = def.HandleTolerance
	}
	if cfg.MinDimension <= 0 {
		cfg.MinDimension = def.MinDimension
	}
	return &Controller{cfg: cfg, mode: ratio.Free}
}

// SetImageBounds installs the dimensions of a newly loaded image and resets
// the crop rectangle to cover the full image, refitted to the active ratio
// mode. Non-positive dimensions unload the image and return the controller
// to its inert state.
func (c *Controller) SetImageBounds(width, height float64) {
	c.state = Idle
	c.drag = dragSession{}
	if width <= 0 || height <= 0 {
		c.hasImage = false
		c.bounds = geometry.Rect{}
		c.rect = geometry.Rect{}
		return
	}
	c.hasImage = true
	c.bounds = geometry.RectFromMinMax(0, 0, width, height)
	c.rect = c.bounds
	c.refit()
}

// SetMode installs a new aspect-ratio mode and re-validates the current
// rectangle against it, anchored on the rectangle's center.
func (c *Controller) SetMode(m ratio.Mode) {
	c.mode = m
	if c.state == Idle {
		c.refit()
	}
}

// ToggleOrientation swaps the width and height components of the active
// mode (portrait/landscape) and re-validates the rectangle. Toggling twice
// restores the exact original ratio. Free mode is unaffected.
func (c *Controller) ToggleOrientation() {
	c.mode = c.mode.Swapped()
	if c.state == Idle {
		c.refit()
	}
}

// SetRectangle installs an externally proposed rectangle, for example a
// vision-model crop suggestion. The proposal passes through the same
// normalize, ratio-refit, clamp and minimum-size pipeline as a drag.
func (c *Controller) SetRectangle(r geometry.Rect) {
	if !c.hasImage || c.state == Dragging {
		return
	}
	c.rect = r.Normalize().ClampTo(c.bounds)
	c.refit()
}

// PointerDown starts a drag session if the position hits a handle or the
// rectangle body. A miss leaves the controller idle.
func (c *Controller) PointerDown(p geometry.Point) {
	if !c.hasImage || c.state != Idle {
		return
	}
	h := handles.HitTest(p, c.rect, c.cfg.HandleTolerance)
	if h == handles.None {
		return
	}
	c.drag = dragSession{handle: h}
	if h == handles.Body {
		c.drag.grab = p.Sub(c.rect.Min)
	} else {
		c.drag.anchor = handles.Anchor(h, c.rect)
	}
	c.state = Dragging
}

// PointerMove recomputes the rectangle from the current pointer position
// and the drag session's fixed anchor. Outside a drag it is a no-op.
func (c *Controller) PointerMove(p geometry.Point) {
	if c.state != Dragging {
		return
	}
	if c.drag.handle == handles.Body {
		c.moveTo(p)
	} else {
		c.resizeTo(p)
	}
}

// PointerUp ends the drag session; the last computed rectangle becomes the
// committed state.
func (c *Controller) PointerUp() {
	c.endDrag()
}

// PointerCancel aborts the drag session. There is no partial rollback: the
// last successfully computed rectangle stands.
func (c *Controller) PointerCancel() {
	c.endDrag()
}

func (c *Controller) endDrag() {
	if c.state != Dragging {
		return
	}
	c.state = Idle
	c.drag = dragSession{}
	// A mode change stored during the drag takes effect now.
	c.refit()
}

// Rectangle returns the current crop rectangle in image-pixel coordinates.
func (c *Controller) Rectangle() geometry.Rect {
	return c.rect
}

// ImageBounds returns the loaded image bounds, a zero rect when no image
// is loaded.
func (c *Controller) ImageBounds() geometry.Rect {
	return c.bounds
}

// Mode returns the active aspect-ratio mode.
func (c *Controller) Mode() ratio.Mode {
	return c.mode
}

// Dragging reports whether a drag session is active.
func (c *Controller) Dragging() bool {
	return c.state == Dragging
}

// ActiveHandle returns the handle of the current drag session, or None.
func (c *Controller) ActiveHandle() handles.Handle {
	if c.state != Dragging {
		return handles.None
	}
	return c.drag.handle
}

// moveTo translates the rectangle so its top-left follows the pointer minus
// the grab offset. The clamp adjusts position only: the rectangle stops
// flush against the boundary and never changes size.
func (c *Controller) moveTo(p geometry.Point) {
	min := p.Sub(c.drag.grab)
	w, h := c.rect.Width(), c.rect.Height()
	c.rect = geometry.RectFromMinMax(min.X, min.Y, min.X+w, min.Y+h).ClampTo(c.bounds)
}

// resizeTo rebuilds the rectangle from the session anchor and the pointer.
// Pipeline: raw extents (implicitly normalized), ratio derivation for the
// driving axis, minimum-size floor growing away from the anchor, and a
// bounds clamp that shrinks toward the still-fixed anchor rather than
// translating it.
func (c *Controller) resizeTo(p geometry.Point) {
	h := c.drag.handle
	a := c.drag.anchor

	var w, ht float64
	switch {
	case h.IsCorner():
		w = math.Abs(p.X - a.X)
		ht = math.Abs(p.Y - a.Y)
	case h == handles.Left || h == handles.Right:
		w = math.Abs(p.X - a.X)
		ht = c.rect.Height()
	default: // Top, Bottom
		w = c.rect.Width()
		ht = math.Abs(p.Y - a.Y)
	}

	r, constrained := c.mode.Ratio(c.bounds.Width(), c.bounds.Height())
	if constrained {
		w, ht = ratio.DeriveSize(w, ht, driver(h), r)
	}
	w, ht = c.applyFloor(w, ht, r, constrained)

	// Dragging past the anchor flips the rectangle to the pointer's side
	// instead of inverting coordinates.
	dx, dy := direction(h)
	switch {
	case h.IsCorner():
		if p.X != a.X {
			dx = sign(p.X - a.X)
		}
		if p.Y != a.Y {
			dy = sign(p.Y - a.Y)
		}
	case h == handles.Left || h == handles.Right:
		if p.X != a.X {
			dx = sign(p.X - a.X)
		}
	default: // Top, Bottom
		if p.Y != a.Y {
			dy = sign(p.Y - a.Y)
		}
	}

	availX := c.bounds.Max.X - a.X
	if dx < 0 {
		availX = a.X - c.bounds.Min.X
	}
	availY := c.bounds.Max.Y - a.Y
	if dy < 0 {
		availY = a.Y - c.bounds.Min.Y
	}
	if constrained {
		s := math.Min(1, math.Min(availX/w, availY/ht))
		if s < 1 {
			w *= s
			ht *= s
		}
	} else {
		w = math.Min(w, availX)
		ht = math.Min(ht, availY)
	}

	// Re-apply the floor: when the anchor sits on the image edge and the
	// pointer crosses it, the available space alone would collapse the
	// rectangle. The final clamp may then nudge the anchor back inside.
	w, ht = c.applyFloor(w, ht, r, constrained)

	c.rect = buildFromAnchor(a, dx, dy, w, ht).ClampTo(c.bounds)
}

// applyFloor enforces the minimum-dimension floor on a proposed size. Under
// a ratio constraint the floor applies to the short side and the long side
// follows, so the ratio survives the floor.
func (c *Controller) applyFloor(w, ht, r float64, constrained bool) (float64, float64) {
	min := c.minDimension()
	if constrained {
		if floor := math.Max(min, min*r); w < floor {
			w = floor
			ht = w / r
		}
		return w, ht
	}
	return math.Max(w, min), math.Max(ht, min)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// refit re-validates the current rectangle against the active mode and
// bounds, used after mode changes, orientation toggles and external
// rectangle proposals.
func (c *Controller) refit() {
	if !c.hasImage {
		return
	}
	min := c.minDimension()
	if r, ok := c.mode.Ratio(c.bounds.Width(), c.bounds.Height()); ok {
		c.rect = ratio.Refit(c.rect, c.bounds, r, min)
		return
	}
	c.rect = c.rect.Normalize().ClampTo(c.bounds)
	if c.rect.Width() < min || c.rect.Height() < min {
		c.rect = geometry.RectFromCenterSize(c.rect.Center(),
			math.Max(c.rect.Width(), min), math.Max(c.rect.Height(), min)).ClampTo(c.bounds)
	}
}

// minDimension caps the configured floor at the image size so a tiny image
// cannot make the floor unsatisfiable.
func (c *Controller) minDimension() float64 {
	return math.Min(c.cfg.MinDimension, math.Min(c.bounds.Width(), c.bounds.Height()))
}

// driver selects the axis the handle controls. Corner handles drive width
// by convention; the derived axis follows from the target ratio.
func driver(h handles.Handle) ratio.Driver {
	if h == handles.Top || h == handles.Bottom {
		return ratio.DriveHeight
	}
	return ratio.DriveWidth
}

// direction returns the default axis signs along which the rectangle
// extends away from the session anchor for each resize handle. The driven
// axes follow the pointer's side of the anchor instead when they differ.
func direction(h handles.Handle) (dx, dy float64) {
	switch h {
	case handles.TopLeft:
		return -1, -1
	case handles.TopRight:
		return 1, -1
	case handles.BottomLeft:
		return -1, 1
	case handles.BottomRight:
		return 1, 1
	case handles.Left:
		return -1, 1
	case handles.Right:
		return 1, 1
	case handles.Top:
		return 1, -1
	default: // Bottom
		return 1, 1
	}
}

// buildFromAnchor reconstructs the rectangle extending (w, h) from the
// anchor point along the given axis directions.
func buildFromAnchor(a geometry.Point, dx, dy, w, h float64) geometry.Rect {
	x0, y0 := a.X, a.Y
	if dx < 0 {
		x0 = a.X - w
	}
	if dy < 0 {
		y0 = a.Y - h
	}
	return geometry.RectFromMinMax(x0, y0, x0+w, y0+h)
}
