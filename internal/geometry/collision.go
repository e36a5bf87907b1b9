package geometry

import "math"

// overlaps reports whether a and b share a strictly positive area.
// Both Collides and Intersection use it, so they always agree.
func overlaps(a, b Rect) bool {
	return a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}

// Collides reports whether two rectangles overlap with positive area.
//
// A nil rectangle never collides. Two rectangles are separated when one lies
// entirely to the left, right, above or below the other; rectangles that only
// share an edge are therefore not colliding.
func Collides(a, b *Rect) bool {
	if a == nil || b == nil {
		return false
	}
	return overlaps(*a, *b)
}

// Intersection returns the overlapping rectangle of a and b, or nil when
// either is absent or the overlap has no positive area on both axes.
func Intersection(a, b *Rect) *Rect {
	if a == nil || b == nil {
		return nil
	}
	if !overlaps(*a, *b) {
		return nil
	}

	x := math.Max(a.X, b.X)
	y := math.Max(a.Y, b.Y)
	right := math.Min(a.Right(), b.Right())
	bottom := math.Min(a.Bottom(), b.Bottom())

	return &Rect{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// CollidesAny reports whether r collides with any of the given regions.
func CollidesAny(r Rect, regions []Region) bool {
	for _, region := range regions {
		if Collides(&r, region.Bounds()) {
			return true
		}
	}
	return false
}

// OverlapArea returns the total area r shares with the given regions.
// Overlaps between the regions themselves are counted once per region.
func OverlapArea(r Rect, regions []Region) float64 {
	var total float64
	for _, region := range regions {
		if in := Intersection(&r, region.Bounds()); in != nil {
			total += in.Area()
		}
	}
	return total
}
