package geometry

import "testing"

func rp(x, y, w, h float64) *Rect {
	r := NewRect(x, y, w, h)
	return &r
}

func TestCollides(t *testing.T) {
	base := rp(0, 0, 100, 100)

	tests := []struct {
		name string
		a, b *Rect
		want bool
	}{
		{name: "nil first", a: nil, b: base, want: false},
		{name: "nil second", a: base, b: nil, want: false},
		{name: "both nil", a: nil, b: nil, want: false},
		{name: "strictly left", a: base, b: rp(150, 0, 50, 50), want: false},
		{name: "strictly right", a: rp(150, 0, 50, 50), b: base, want: false},
		{name: "strictly above", a: rp(0, -80, 50, 50), b: base, want: false},
		{name: "strictly below", a: rp(0, 200, 50, 50), b: base, want: false},
		{name: "touching right edge", a: base, b: rp(100, 0, 50, 50), want: false},
		{name: "touching bottom edge", a: base, b: rp(0, 100, 50, 50), want: false},
		{name: "touching corner", a: base, b: rp(100, 100, 50, 50), want: false},
		{name: "partial overlap", a: base, b: rp(50, 50, 100, 100), want: true},
		{name: "contained", a: base, b: rp(25, 25, 10, 10), want: true},
		{name: "identical", a: base, b: rp(0, 0, 100, 100), want: true},
		{name: "cross shape", a: rp(40, -50, 20, 200), b: rp(-50, 40, 200, 20), want: true},
		{name: "negative coordinates", a: rp(-200, -200, 150, 150), b: rp(-100, -100, 10, 10), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collides(tt.a, tt.b); got != tt.want {
				t.Errorf("Collides(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Collides(tt.b, tt.a); got != tt.want {
				t.Errorf("Collides is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestIntersection(t *testing.T) {
	tests := []struct {
		name string
		a, b *Rect
		want *Rect
	}{
		{name: "nil input", a: nil, b: rp(0, 0, 10, 10), want: nil},
		{name: "disjoint", a: rp(0, 0, 10, 10), b: rp(20, 20, 10, 10), want: nil},
		{name: "touching edge", a: rp(0, 0, 10, 10), b: rp(10, 0, 10, 10), want: nil},
		{name: "zero height overlap", a: rp(0, 0, 10, 10), b: rp(5, 10, 10, 10), want: nil},
		{name: "partial", a: rp(0, 0, 100, 100), b: rp(50, 25, 100, 100), want: rp(50, 25, 50, 75)},
		{name: "contained", a: rp(0, 0, 100, 100), b: rp(10, 20, 30, 40), want: rp(10, 20, 30, 40)},
		{name: "negative plane", a: rp(-50, -50, 100, 100), b: rp(-100, -10, 80, 20), want: rp(-50, -10, 30, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intersection(tt.a, tt.b)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Intersection() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Intersection() = nil, want %v", tt.want)
			}
			if *got != *tt.want {
				t.Errorf("Intersection() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The two helpers must agree: an intersection exists exactly when the
// rectangles collide, and its area is the geometric overlap.
func TestIntersectionMatchesCollides(t *testing.T) {
	rects := []*Rect{
		rp(0, 0, 100, 100),
		rp(100, 0, 50, 50),
		rp(99, 99, 10, 10),
		rp(-20, 40, 30, 5),
		rp(10, 10, 0, 50),
		rp(50, -10, 10, 200),
		rp(200, 200, 1, 1),
	}

	for i, a := range rects {
		for j, b := range rects {
			inter := Intersection(a, b)
			if (inter != nil) != Collides(a, b) {
				t.Errorf("rects %d,%d: Intersection=%v but Collides=%v", i, j, inter, Collides(a, b))
			}
			if inter == nil {
				continue
			}
			wantW := min(a.Right(), b.Right()) - max(a.X, b.X)
			wantH := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
			if inter.Area() != wantW*wantH {
				t.Errorf("rects %d,%d: area %g, want %g", i, j, inter.Area(), wantW*wantH)
			}
		}
	}
}

func TestCollidesAny(t *testing.T) {
	regions := []Region{
		NewRegion("a", NewRect(0, 0, 100, 100)),
		NewRegion("b", NewRect(300, 0, 100, 100)),
	}

	if !CollidesAny(NewRect(350, 50, 10, 10), regions) {
		t.Error("expected collision with region b")
	}
	if CollidesAny(NewRect(100, 0, 200, 100), regions) {
		t.Error("rect between regions should not collide")
	}
	if CollidesAny(NewRect(0, 0, 10, 10), nil) {
		t.Error("no regions should never collide")
	}
}

func TestOverlapArea(t *testing.T) {
	regions := []Region{
		NewRegion("a", NewRect(0, 0, 100, 100)),
		NewRegion("b", NewRect(300, 0, 100, 100)),
	}

	tests := []struct {
		name string
		r    Rect
		want float64
	}{
		{"clear", NewRect(100, 0, 200, 100), 0},
		{"one region", NewRect(50, 50, 100, 100), 2500},
		{"both regions", NewRect(50, 0, 300, 10), 1000},
		{"covers a", NewRect(-10, -10, 120, 120), 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlapArea(tt.r, regions); got != tt.want {
				t.Errorf("OverlapArea(%s) = %g, want %g", tt.r, got, tt.want)
			}
		})
	}
}

func TestRectIsEmpty(t *testing.T) {
	tests := []struct {
		r    Rect
		want bool
	}{
		{NewRect(0, 0, 10, 10), false},
		{NewRect(5, 5, 0, 10), true},
		{NewRect(5, 5, 10, -1), true},
	}
	for _, tt := range tests {
		if got := tt.r.IsEmpty(); got != tt.want {
			t.Errorf("%s.IsEmpty() = %v, want %v", tt.r, got, tt.want)
		}
	}
}
