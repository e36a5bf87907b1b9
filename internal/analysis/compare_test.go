package analysis

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/jmylchreest/figaid/internal/geometry"
	imageutil "github.com/jmylchreest/figaid/internal/image"
)

func TestCompare(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}

	changed := solidImage(100, 100, white)
	for y := 40; y < 50; y++ {
		for x := 40; x < 50; x++ {
			changed.SetRGBA(x, y, black)
		}
	}

	tests := []struct {
		name      string
		before    image.Image
		after     image.Image
		wantSim   float64
		wantDiffs []geometry.Rect
		wantText  string
	}{
		{
			name:      "identical",
			before:    solidImage(10, 10, white),
			after:     solidImage(10, 10, white),
			wantSim:   1,
			wantDiffs: []geometry.Rect{},
			wantText:  "Images are identical",
		},
		{
			name:      "inverted",
			before:    solidImage(10, 10, white),
			after:     solidImage(10, 10, black),
			wantSim:   0,
			wantDiffs: []geometry.Rect{geometry.NewRect(0, 0, 10, 10)},
			wantText:  "Images are substantially different",
		},
		{
			name:      "small patch",
			before:    solidImage(100, 100, white),
			after:     changed,
			wantSim:   0.99,
			wantDiffs: []geometry.Rect{geometry.NewRect(20, 20, 50, 50)},
			wantText:  "Images are visually similar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.before, tt.after)
			if math.Abs(c.Similarity-tt.wantSim) > 1e-9 {
				t.Errorf("Similarity = %v, want %v", c.Similarity, tt.wantSim)
			}
			if len(c.Differences) != len(tt.wantDiffs) {
				t.Fatalf("Differences = %v, want %v", c.Differences, tt.wantDiffs)
			}
			for i := range tt.wantDiffs {
				if c.Differences[i] != tt.wantDiffs[i] {
					t.Errorf("Differences[%d] = %v, want %v", i, c.Differences[i], tt.wantDiffs[i])
				}
			}
			if c.Analysis != tt.wantText {
				t.Errorf("Analysis = %q, want %q", c.Analysis, tt.wantText)
			}
		})
	}
}

func TestCompareDifferentSizes(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	c := Compare(solidImage(10, 10, white), solidImage(20, 5, white))
	if c.Similarity != 1 {
		t.Errorf("Similarity = %v, want 1 over common area", c.Similarity)
	}
	if c.Analysis != "Images are identical (sizes differ: 10x10 vs 20x5, compared 10x5)" {
		t.Errorf("Analysis = %q", c.Analysis)
	}

	empty := Compare(image.NewRGBA(image.Rect(0, 0, 0, 0)), solidImage(1, 1, white))
	if empty.Similarity != 0 || empty.Analysis != "Images have no common area" {
		t.Errorf("empty comparison = %+v", empty)
	}
}

func TestCompareOffsetBounds(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	sub := solidImage(20, 20, white).SubImage(image.Rect(5, 5, 15, 15))
	if c := Compare(sub, solidImage(10, 10, white)); c.Similarity != 1 {
		t.Errorf("Similarity = %v, want 1", c.Similarity)
	}
}

func TestCompareSources(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	before := writeImage(t, solidImage(10, 10, white))
	after := writeImage(t, solidImage(10, 10, white))

	c, err := CompareSources(context.Background(), imageutil.NewSmartLoader(), before, after)
	if err != nil {
		t.Fatalf("CompareSources() error = %v", err)
	}
	if c.Similarity != 1 {
		t.Errorf("Similarity = %v", c.Similarity)
	}

	if _, err := CompareSources(context.Background(), nil, before, "/missing.png"); err == nil {
		t.Error("expected error for missing after image")
	}
}
