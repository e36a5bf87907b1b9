// Package geometry provides axis-aligned rectangle primitives in the shared
// document coordinate plane.
package geometry

import "fmt"

// Rect is an axis-aligned rectangle. Rects are values; nothing in the
// application mutates a Rect after construction.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// NewRect creates a Rect from its origin and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// IsEmpty reports whether the rectangle has no positive area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// String returns a compact representation such as "(10, 20 200x100)".
func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Region is a Rect occupied by a named element on the canvas.
type Region struct {
	Rect `yaml:",inline"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NewRegion creates a named Region.
func NewRegion(name string, r Rect) Region {
	return Region{Rect: r, Name: name}
}

// Bounds returns a pointer to a copy of the region's rectangle, suitable for
// the collision helpers.
func (r Region) Bounds() *Rect {
	rect := r.Rect
	return &rect
}
