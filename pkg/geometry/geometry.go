package geometry

import "math"

// Point is a position in continuous image-pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle in continuous image-pixel coordinates.
// A well-formed Rect has Min.X <= Max.X and Min.Y <= Max.Y; use Normalize
// to repair a rect whose corners have crossed.
type Rect struct {
	Min Point
	Max Point
}

// RectFromMinMax builds a rectangle from two corner coordinates.
func RectFromMinMax(x0, y0, x1, y1 float64) Rect {
	return Rect{Min: Pt(x0, y0), Max: Pt(x1, y1)}
}

// RectFromCenterSize builds a rectangle of the given size centered on c.
func RectFromCenterSize(c Point, width, height float64) Rect {
	return Rect{
		Min: Pt(c.X-width/2, c.Y-height/2),
		Max: Pt(c.X+width/2, c.Y+height/2),
	}
}

// RectFromCorners builds a normalized rectangle spanning two arbitrary
// corner points.
func RectFromCorners(a, b Point) Rect {
	return Rect{Min: a, Max: b}.Normalize()
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// Area returns the area of the rectangle, zero for degenerate rects.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle has no interior.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// AspectRatio returns width/height, or zero for a degenerate height.
func (r Rect) AspectRatio() float64 {
	h := r.Height()
	if h == 0 {
		return 0
	}
	return r.Width() / h
}

// Corner accessors. TopLeft is Min and BottomRight is Max; the other two
// mix the coordinates.
func (r Rect) TopLeft() Point     { return r.Min }
func (r Rect) TopRight() Point    { return Pt(r.Max.X, r.Min.Y) }
func (r Rect) BottomLeft() Point  { return Pt(r.Min.X, r.Max.Y) }
func (r Rect) BottomRight() Point { return r.Max }

// Contains reports whether p lies inside the rectangle, edges inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Min.X >= r.Min.X && other.Min.Y >= r.Min.Y &&
		other.Max.X <= r.Max.X && other.Max.Y <= r.Max.Y
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Min: Pt(r.Min.X+dx, r.Min.Y+dy),
		Max: Pt(r.Max.X+dx, r.Max.Y+dy),
	}
}

// Normalize returns a rectangle with the coordinates swapped wherever a
// drag has pushed a corner past its opposite side.
func (r Rect) Normalize() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Intersect returns the overlap of r and other, or a zero Rect when they
// do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		Min: Pt(math.Max(r.Min.X, other.Min.X), math.Max(r.Min.Y, other.Min.Y)),
		Max: Pt(math.Min(r.Max.X, other.Max.X), math.Min(r.Max.Y, other.Max.Y)),
	}
	if out.Min.X > out.Max.X || out.Min.Y > out.Max.Y {
		return Rect{}
	}
	return out
}

// ClampTo moves the rectangle so it lies entirely within bounds. The size
// is preserved unless a dimension exceeds the bounds, in which case that
// dimension is reduced symmetrically about the rectangle's center.
func (r Rect) ClampTo(bounds Rect) Rect {
	r = r.Normalize()
	if bw := bounds.Width(); r.Width() > bw {
		cx := r.Center().X
		r.Min.X, r.Max.X = cx-bw/2, cx+bw/2
	}
	if bh := bounds.Height(); r.Height() > bh {
		cy := r.Center().Y
		r.Min.Y, r.Max.Y = cy-bh/2, cy+bh/2
	}
	if r.Min.X < bounds.Min.X {
		r = r.Translate(bounds.Min.X-r.Min.X, 0)
	}
	if r.Max.X > bounds.Max.X {
		r = r.Translate(bounds.Max.X-r.Max.X, 0)
	}
	if r.Min.Y < bounds.Min.Y {
		r = r.Translate(0, bounds.Min.Y-r.Min.Y)
	}
	if r.Max.Y > bounds.Max.Y {
		r = r.Translate(0, bounds.Max.Y-r.Max.Y)
	}
	return r
}

// Inscribe returns the largest rectangle with the given width/height ratio
// that fits inside r while sharing its center.
func (r Rect) Inscribe(ratio float64) Rect {
	if ratio <= 0 || r.Empty() {
		return r
	}
	w, h := r.Width(), r.Height()
	if w/h > ratio {
		w = h * ratio
	} else {
		h = w / ratio
	}
	return RectFromCenterSize(r.Center(), w, h)
}
