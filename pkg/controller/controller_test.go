package controller

import (
	"math"
	"testing"

	"github.com/menta2k/image-cropper/pkg/geometry"
	"github.com/menta2k/image-cropper/pkg/handles"
	"github.com/menta2k/image-cropper/pkg/ratio"
)

func newTestController(width, height float64) *Controller {
	c := New(DefaultConfig())
	c.SetImageBounds(width, height)
	return c
}

func ratioOf(r geometry.Rect) float64 {
	return r.Width() / r.Height()
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{})
	if c.cfg.HandleTolerance != 10 || c.cfg.MinDimension != 8 {
		t.Errorf("Expected default config, got %+v", c.cfg)
	}
	if c.Mode() != ratio.Free {
		t.Errorf("Expected Free mode initially, got %v", c.Mode())
	}
}

func TestSetImageBoundsResetsToFullImage(t *testing.T) {
	c := newTestController(1000, 800)

	want := geometry.RectFromMinMax(0, 0, 1000, 800)
	if got := c.Rectangle(); got != want {
		t.Errorf("Expected full-image rectangle %v, got %v", want, got)
	}
	if got := c.ImageBounds(); got != want {
		t.Errorf("Expected bounds %v, got %v", want, got)
	}
}

func TestSetImageBoundsRefitsToMode(t *testing.T) {
	c := New(DefaultConfig())
	c.SetMode(ratio.Square)
	c.SetImageBounds(1000, 800)

	r := c.Rectangle()
	if r.Width() != 800 || r.Height() != 800 {
		t.Errorf("Expected 800x800 square, got %fx%f", r.Width(), r.Height())
	}
	if c := r.Center(); c != geometry.Pt(500, 400) {
		t.Errorf("Expected centered square, got center (%f,%f)", c.X, c.Y)
	}
}

func TestNoImageIgnoresEvents(t *testing.T) {
	c := New(DefaultConfig())

	c.PointerDown(geometry.Pt(10, 10))
	if c.Dragging() {
		t.Error("Expected pointer events to be ignored with no image")
	}
	c.SetRectangle(geometry.RectFromMinMax(0, 0, 50, 50))
	if c.Rectangle() != (geometry.Rect{}) {
		t.Error("Expected SetRectangle to be ignored with no image")
	}
}

func TestUnloadImage(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetImageBounds(0, 0)

	if c.Rectangle() != (geometry.Rect{}) {
		t.Error("Expected rectangle reset on unload")
	}
	c.PointerDown(geometry.Pt(10, 10))
	if c.Dragging() {
		t.Error("Expected pointer events ignored after unload")
	}
}

func TestPointerDownMissLeavesIdle(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	c.PointerDown(geometry.Pt(900, 700))
	if c.Dragging() {
		t.Error("Expected a miss to leave the controller idle")
	}
	if c.ActiveHandle() != handles.None {
		t.Errorf("Expected no active handle, got %s", c.ActiveHandle())
	}
}

func TestBodyDragMovesWithoutResizing(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 300, 250))

	c.PointerDown(geometry.Pt(200, 175))
	if c.ActiveHandle() != handles.Body {
		t.Fatalf("Expected Body drag, got %s", c.ActiveHandle())
	}

	c.PointerMove(geometry.Pt(250, 225))
	got := c.Rectangle()
	want := geometry.RectFromMinMax(150, 150, 350, 300)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
	c.PointerUp()
}

func TestBodyDragStopsFlushAtBoundary(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 300, 250))

	c.PointerDown(geometry.Pt(200, 175))
	c.PointerMove(geometry.Pt(5000, 5000))
	c.PointerUp()

	got := c.Rectangle()
	want := geometry.RectFromMinMax(800, 650, 1000, 800)
	if got != want {
		t.Errorf("Expected rectangle flush against the corner %v, got %v", want, got)
	}
	if got.Width() != 200 || got.Height() != 150 {
		t.Errorf("Expected size preserved at 200x150, got %fx%f", got.Width(), got.Height())
	}
}

func TestCornerDragFree(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	// Grab the bottom-right corner; the opposite corner stays fixed
	c.PointerDown(geometry.Pt(500, 400))
	if c.ActiveHandle() != handles.BottomRight {
		t.Fatalf("Expected BottomRight drag, got %s", c.ActiveHandle())
	}

	c.PointerMove(geometry.Pt(700, 600))
	got := c.Rectangle()
	want := geometry.RectFromMinMax(100, 100, 700, 600)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
	c.PointerUp()
}

func TestCornerDragCrossingAnchor(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	// Dragging the bottom-right corner past the top-left anchor flips the
	// rectangle around it without inverting coordinates
	c.PointerDown(geometry.Pt(500, 400))
	c.PointerMove(geometry.Pt(40, 60))
	c.PointerUp()

	got := c.Rectangle()
	want := geometry.RectFromMinMax(40, 60, 100, 100)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestCornerDragOriginalRatio(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetMode(ratio.Original) // 1.25
	c.SetRectangle(geometry.RectFromMinMax(0, 0, 500, 400))

	c.PointerDown(geometry.Pt(500, 400))
	c.PointerMove(geometry.Pt(900, 900))
	c.PointerUp()

	// Width drives, height derives: 900 / 1.25 = 720
	got := c.Rectangle()
	want := geometry.RectFromMinMax(0, 0, 900, 720)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEdgeDragCustomRatio(t *testing.T) {
	c := newTestController(1000, 800)
	m, err := ratio.Custom(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	c.SetMode(m)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 300))

	// Drag the left edge outward; height follows the 2:1 constraint,
	// growing downward from the fixed top edge
	c.PointerDown(geometry.Pt(100, 200))
	if c.ActiveHandle() != handles.Left {
		t.Fatalf("Expected Left drag, got %s", c.ActiveHandle())
	}
	c.PointerMove(geometry.Pt(50, 200))
	c.PointerUp()

	got := c.Rectangle()
	want := geometry.RectFromMinMax(50, 100, 500, 325)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEdgeDragTopDrivesHeight(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetMode(ratio.Square)
	c.SetRectangle(geometry.RectFromMinMax(300, 300, 500, 500))

	// Top handle drives height; width derives from the 1:1 constraint
	c.PointerDown(geometry.Pt(400, 300))
	if c.ActiveHandle() != handles.Top {
		t.Fatalf("Expected Top drag, got %s", c.ActiveHandle())
	}
	c.PointerMove(geometry.Pt(400, 200))
	c.PointerUp()

	got := c.Rectangle()
	if got.Height() != 300 || got.Width() != 300 {
		t.Errorf("Expected 300x300, got %fx%f", got.Width(), got.Height())
	}
	// The bottom-left anchor stays fixed
	if got.Min.X != 300 || got.Max.Y != 500 {
		t.Errorf("Expected anchor (300,500) fixed, got %v", got)
	}
}

func TestResizeClampShrinksTowardAnchor(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetMode(ratio.Square)
	c.SetRectangle(geometry.RectFromMinMax(600, 500, 800, 700))

	// Dragging far past the image corner: the constrained rectangle grows
	// only as far as the bounds allow, scaled uniformly from the anchor
	c.PointerDown(geometry.Pt(800, 700))
	c.PointerMove(geometry.Pt(2000, 2000))
	c.PointerUp()

	got := c.Rectangle()
	if got.Min != geometry.Pt(600, 500) {
		t.Errorf("Expected anchor (600,500) fixed, got min (%f,%f)", got.Min.X, got.Min.Y)
	}
	// availX=400, availY=300: the square caps at 300x300
	if got.Width() != 300 || got.Height() != 300 {
		t.Errorf("Expected 300x300, got %fx%f", got.Width(), got.Height())
	}
	if !c.ImageBounds().ContainsRect(got) {
		t.Errorf("Expected rectangle inside bounds, got %v", got)
	}
}

func TestResizeMinimumFloor(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	// Dragging the corner onto the anchor cannot collapse the rectangle
	c.PointerDown(geometry.Pt(500, 400))
	c.PointerMove(geometry.Pt(100, 100))
	c.PointerUp()

	got := c.Rectangle()
	if got.Width() < 8 || got.Height() < 8 {
		t.Errorf("Expected minimum 8x8, got %fx%f", got.Width(), got.Height())
	}
}

func TestResizeMinimumFloorConstrained(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetMode(ratio.R16x9)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 420, 280))

	c.PointerDown(geometry.Pt(420, 280))
	c.PointerMove(geometry.Pt(100, 100))
	c.PointerUp()

	got := c.Rectangle()
	// Constrained floor keeps the short side at the minimum and the ratio
	if got.Height() < 8-1e-9 {
		t.Errorf("Expected height >= 8, got %f", got.Height())
	}
	if math.Abs(ratioOf(got)-16.0/9.0) > 1e-6 {
		t.Errorf("Expected 16:9 preserved at the floor, got %f", ratioOf(got))
	}
}

func TestDragIgnoresSetters(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	c.PointerDown(geometry.Pt(300, 250))
	c.SetRectangle(geometry.RectFromMinMax(0, 0, 50, 50))
	if got := c.Rectangle(); got != geometry.RectFromMinMax(100, 100, 500, 400) {
		t.Errorf("Expected SetRectangle ignored during drag, got %v", got)
	}

	// Mode changes are stored but not applied until the drag ends
	c.SetMode(ratio.Square)
	if got := c.Rectangle(); got.Width() == got.Height() {
		t.Error("Expected refit deferred while dragging")
	}

	// On release the stored mode takes effect
	c.PointerUp()
	got := c.Rectangle()
	if got.Width() != got.Height() {
		t.Errorf("Expected square refit on release, got %fx%f", got.Width(), got.Height())
	}
	if !c.ImageBounds().ContainsRect(got) {
		t.Errorf("Expected rectangle inside bounds, got %v", got)
	}
}

func TestPointerCancelKeepsLastRectangle(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	c.PointerDown(geometry.Pt(500, 400))
	c.PointerMove(geometry.Pt(700, 600))
	c.PointerCancel()

	if c.Dragging() {
		t.Error("Expected idle state after cancel")
	}
	got := c.Rectangle()
	want := geometry.RectFromMinMax(100, 100, 700, 600)
	if got != want {
		t.Errorf("Expected last computed rectangle %v, got %v", want, got)
	}

	// Further moves are ignored
	c.PointerMove(geometry.Pt(900, 700))
	if c.Rectangle() != want {
		t.Error("Expected moves after cancel to be ignored")
	}
}

func TestModeSwitchRefitsInsideCurrent(t *testing.T) {
	c := newTestController(400, 400)
	c.SetRectangle(geometry.RectFromMinMax(175, 50, 225, 350))

	// A 50x300 free selection constrained to 1:1 shrinks to 50x50 around
	// the same center rather than jumping to a large centered square
	c.SetMode(ratio.Square)
	got := c.Rectangle()
	if got.Width() != 50 || got.Height() != 50 {
		t.Errorf("Expected 50x50, got %fx%f", got.Width(), got.Height())
	}
	if center := got.Center(); center != geometry.Pt(200, 200) {
		t.Errorf("Expected center (200,200), got (%f,%f)", center.X, center.Y)
	}
}

func TestToggleOrientationRoundTrip(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetMode(ratio.R16x9)
	before := c.Rectangle()

	c.ToggleOrientation()
	mid := c.Rectangle()
	if math.Abs(ratioOf(mid)-9.0/16.0) > 1e-6 {
		t.Errorf("Expected portrait 9:16, got ratio %f", ratioOf(mid))
	}

	c.ToggleOrientation()
	if c.Mode() != ratio.R16x9 {
		t.Errorf("Expected exact mode round-trip, got %v", c.Mode())
	}
	after := c.Rectangle()
	if math.Abs(ratioOf(after)-ratioOf(before)) > 1e-6 {
		t.Errorf("Expected ratio restored to %f, got %f", ratioOf(before), ratioOf(after))
	}
}

func TestSetRectangleRefitsToMode(t *testing.T) {
	c := newTestController(1000, 800)
	c.SetMode(ratio.Square)

	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 300))
	got := c.Rectangle()
	if got.Width() != got.Height() {
		t.Errorf("Expected square after refit, got %fx%f", got.Width(), got.Height())
	}
	if !c.ImageBounds().ContainsRect(got) {
		t.Errorf("Expected rectangle inside bounds, got %v", got)
	}
}

func TestContainmentInvariant(t *testing.T) {
	c := newTestController(640, 480)
	c.SetMode(ratio.R4x3)

	// Hammer the controller with gestures that all try to escape the image
	moves := []geometry.Point{
		{X: -500, Y: -500}, {X: 5000, Y: 200}, {X: 320, Y: 9999},
		{X: 0, Y: 0}, {X: 640, Y: 480}, {X: -1, Y: 481},
	}
	for _, start := range []geometry.Point{c.Rectangle().BottomRight(), c.Rectangle().Center()} {
		c.PointerDown(start)
		for _, p := range moves {
			c.PointerMove(p)
			if got := c.Rectangle(); !c.ImageBounds().ContainsRect(got) {
				t.Fatalf("Rectangle escaped bounds during drag: %v", got)
			}
		}
		c.PointerUp()
	}
}

func BenchmarkResizeDrag(b *testing.B) {
	c := newTestController(1920, 1080)
	c.SetMode(ratio.R16x9)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.PointerDown(geometry.Pt(1920, 1080))
		c.PointerMove(geometry.Pt(float64(800+i%400), float64(600+i%300)))
		c.PointerUp()
	}
}

func BenchmarkBodyDrag(b *testing.B) {
	c := newTestController(1920, 1080)
	c.SetRectangle(geometry.RectFromMinMax(100, 100, 500, 400))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.PointerDown(geometry.Pt(300, 250))
		c.PointerMove(geometry.Pt(float64(300+i%800), 250))
		c.PointerUp()
	}
}
