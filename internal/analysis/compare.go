package analysis

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/jmylchreest/figaid/internal/geometry"
	imageutil "github.com/jmylchreest/figaid/internal/image"
)

// DiffPadding is added around the changed area so the edges of the
// changed element stay visible.
const DiffPadding = 20

// Comparison is the result of comparing two images.
type Comparison struct {
	Similarity  float64         `json:"similarity"`
	Differences []geometry.Rect `json:"differences"`
	Analysis    string          `json:"analysis"`
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Compare measures how similar two images are over their common area.
// Similarity is one minus the mean normalised RGB difference, so identical
// images score 1. The changed area, padded by DiffPadding, is reported as a
// single difference rectangle.
func Compare(before, after image.Image) Comparison {
	a, b := toRGBA(before), toRGBA(after)
	w := min(a.Bounds().Dx(), b.Bounds().Dx())
	h := min(a.Bounds().Dy(), b.Bounds().Dy())

	if w == 0 || h == 0 {
		return Comparison{
			Similarity:  0,
			Differences: []geometry.Rect{},
			Analysis:    "Images have no common area",
		}
	}

	var total float64
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			oa, ob := a.PixOffset(x, y), b.PixOffset(x, y)
			dr := math.Abs(float64(a.Pix[oa]) - float64(b.Pix[ob]))
			dg := math.Abs(float64(a.Pix[oa+1]) - float64(b.Pix[ob+1]))
			db := math.Abs(float64(a.Pix[oa+2]) - float64(b.Pix[ob+2]))
			if dr == 0 && dg == 0 && db == 0 {
				continue
			}
			total += (dr + dg + db) / (3 * 255)
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	c := Comparison{
		Similarity:  1 - total/float64(w*h),
		Differences: []geometry.Rect{},
	}
	if maxX >= 0 {
		r := image.Rect(minX-DiffPadding, minY-DiffPadding, maxX+1+DiffPadding, maxY+1+DiffPadding).
			Intersect(image.Rect(0, 0, w, h))
		c.Differences = append(c.Differences, geometry.NewRect(
			float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())))
	}

	sizeNote := ""
	if a.Bounds().Size() != b.Bounds().Size() {
		sizeNote = fmt.Sprintf(" (sizes differ: %dx%d vs %dx%d, compared %dx%d)",
			a.Bounds().Dx(), a.Bounds().Dy(), b.Bounds().Dx(), b.Bounds().Dy(), w, h)
	}
	c.Analysis = describeSimilarity(c.Similarity) + sizeNote
	return c
}

func describeSimilarity(s float64) string {
	switch {
	case s == 1:
		return "Images are identical"
	case s >= 0.95:
		return "Images are visually similar"
	case s >= 0.8:
		return "Images differ in places"
	default:
		return "Images are substantially different"
	}
}

// CompareSources loads two images from paths or URLs and compares them.
func CompareSources(ctx context.Context, loader imageutil.Loader, before, after string) (Comparison, error) {
	if loader == nil {
		loader = imageutil.NewSmartLoader()
	}
	a, err := loader.Load(ctx, before)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to load before image: %w", err)
	}
	b, err := loader.Load(ctx, after)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to load after image: %w", err)
	}
	return Compare(a, b), nil
}
