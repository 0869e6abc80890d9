package platform

import "github.com/1broseidon/cardwm/internal/card"

// WindowID is a platform-neutral native window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Point is a position in shell coordinates.
type Point struct {
	X float64
	Y float64
}

// WindowHost is the external window host that realizes card geometry.
// Async requests carry a per-card sequence number; the host reports their
// outcome back through the card manager's completion methods.
type WindowHost interface {
	ResizeEventSync(id card.ID, width, height int) error
	ResizeEventAsync(id card.ID, width, height int, seq uint64) error
	FlipEventSync(id card.ID, width, height int) error
	FlipEventAsync(id card.ID, width, height int, seq uint64) error
	Focus(id card.ID, focused bool) error
	Close(id card.ID) error
	SetDirectRendering(id card.ID, enabled bool) error
}
