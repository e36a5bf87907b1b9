package hero

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/showcase"
)

func pixel(img image.Image, x, y float64) colour.RGB {
	return colour.ToRGB(img.At(int(x), int(y)))
}

func TestGenerateSize(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		wantW int
		wantH int
	}{
		{"defaults", Options{}, DefaultWidth, DefaultHeight},
		{"custom", Options{Width: 800, Height: 400, Columns: 3, Rows: 2}, 800, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := Generate(tt.opts)
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("size = %v, want %dx%d", img.Bounds().Size(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	opts := Options{Width: 400, Height: 300, Seed: 7}
	a, b := Generate(opts), Generate(opts)

	for y := 0; y < 300; y += 13 {
		for x := 0; x < 400; x += 11 {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("pixel (%d, %d) differs between runs", x, y)
			}
		}
	}
}

func TestGenerateAfterGridIsSorted(t *testing.T) {
	red := colour.RGB{R: 220, G: 30, B: 30}
	green := colour.RGB{R: 30, G: 200, B: 40}
	blue := colour.RGB{R: 30, G: 60, B: 220}
	grey := colour.RGB{R: 128, G: 128, B: 128}

	opts := Options{Columns: 2, Rows: 2, Palette: []colour.RGB{grey, blue, green, red}}
	img := Generate(opts)

	want := []colour.RGB{red, green, blue, grey}
	for i, w := range want {
		x, y := AfterCell(opts, i)
		if got := pixel(img, x, y); got != w {
			t.Errorf("after cell %d = %v, want %v", i, got, w)
		}
	}
}

func TestGenerateBackground(t *testing.T) {
	bg := colour.RGB{R: 1, G: 2, B: 3}
	img := Generate(Options{Background: bg})
	if got := pixel(img, 2, float64(DefaultHeight-2)); got != bg {
		t.Errorf("corner = %v, want %v", got, bg)
	}
}

func TestRandomPalette(t *testing.T) {
	a := RandomPalette(8, 3)
	b := RandomPalette(8, 3)
	if len(a) != 8 {
		t.Fatalf("len = %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("palette differs at %d", i)
		}
	}
}

func TestPaletteFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 10 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	p, err := PaletteFromImage(img, 2, 1)
	if err != nil {
		t.Fatalf("PaletteFromImage() error = %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("len = %d, want 2", len(p))
	}
}

func TestPaletteFromShowcase(t *testing.T) {
	s := &showcase.Showcase{Swatches: []showcase.Swatch{
		{Color: colour.UnitRGB{R: 1}},
		{Color: colour.UnitRGB{B: 1}},
	}}
	p := PaletteFromShowcase(s)
	if len(p) != 2 || p[0].Hex() != "#FF0000" || p[1].Hex() != "#0000FF" {
		t.Errorf("PaletteFromShowcase() = %v", p)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hero.png")
	if err := Save(path, Generate(Options{Width: 100, Height: 100})); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("saved file missing or empty: %v", err)
	}
}
