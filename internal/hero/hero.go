// Package hero generates a decorative "before and after" hero image: a
// scattered, washed out colour grid next to the same colours in tidy order.
package hero

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/showcase"
)

// Defaults for Options.
const (
	DefaultWidth        = 1600
	DefaultHeight       = 900
	DefaultColumns      = 6
	DefaultRows         = 5
	DefaultPaletteSize  = 12
	DefaultBeforeLabel  = "Before"
	DefaultAfterLabel   = "After"
	DefaultLabelSize    = 36.0
	DefaultMargin       = 60.0
	DefaultLabelArea    = 100.0
	DefaultCellGap      = 14.0
	DefaultCornerRadius = 14.0
)

// Options configures Generate.
type Options struct {
	Width   int
	Height  int
	Columns int
	Rows    int

	// Seed drives every random choice so output is reproducible.
	Seed int64

	// Palette is the set of colours to draw. A random palette is generated
	// from Seed when empty.
	Palette []colour.RGB

	BeforeLabel string
	AfterLabel  string

	Background colour.RGB
	Logger     hclog.Logger
}

// DefaultOptions returns the standard hero options.
func DefaultOptions() Options {
	return Options{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Columns:     DefaultColumns,
		Rows:        DefaultRows,
		Seed:        1,
		BeforeLabel: DefaultBeforeLabel,
		AfterLabel:  DefaultAfterLabel,
		Background:  colour.RGB{R: 0xF5, G: 0xF5, B: 0xF7},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Columns <= 0 {
		o.Columns = d.Columns
	}
	if o.Rows <= 0 {
		o.Rows = d.Rows
	}
	if o.BeforeLabel == "" {
		o.BeforeLabel = d.BeforeLabel
	}
	if o.AfterLabel == "" {
		o.AfterLabel = d.AfterLabel
	}
	if o.Background == (colour.RGB{}) {
		o.Background = d.Background
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	return o
}

// RandomPalette returns n saturated colours spread around the hue wheel.
func RandomPalette(n int, seed int64) []colour.RGB {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 - decorative output
	out := make([]colour.RGB, n)
	offset := rng.Float64() * 360
	for i := range out {
		h := offset + float64(i)*360/float64(n) + rng.Float64()*12
		for h >= 360 {
			h -= 360
		}
		s := 0.55 + rng.Float64()*0.35
		l := 0.40 + rng.Float64()*0.25
		out[i] = colour.HSLToRGB(h, s, l)
	}
	return out
}

// PaletteFromImage extracts n dominant colours from img.
func PaletteFromImage(img image.Image, n int, seed int64) ([]colour.RGB, error) {
	p, err := colour.NewSeededKMeansExtractor(seed).Extract(img, n)
	if err != nil {
		return nil, fmt.Errorf("failed to extract palette: %w", err)
	}
	return p.ToRGBSlice(), nil
}

// PaletteFromShowcase returns the colours of a showcase's swatches.
func PaletteFromShowcase(s *showcase.Showcase) []colour.RGB {
	out := make([]colour.RGB, 0, len(s.Swatches))
	for _, sw := range s.Swatches {
		out = append(out, sw.Color.RGB())
	}
	return out
}

// cells repeats palette until it fills n cells.
func cells(palette []colour.RGB, n int) []colour.RGB {
	out := make([]colour.RGB, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// Layout describes where the two grids are drawn.
type Layout struct {
	Half       float64
	CellWidth  float64
	CellHeight float64
	Top        float64
}

func layoutFor(o Options) Layout {
	half := float64(o.Width) / 2
	gridW := half - 2*DefaultMargin
	gridH := float64(o.Height) - DefaultLabelArea - DefaultMargin
	return Layout{
		Half:       half,
		CellWidth:  (gridW - float64(o.Columns-1)*DefaultCellGap) / float64(o.Columns),
		CellHeight: (gridH - float64(o.Rows-1)*DefaultCellGap) / float64(o.Rows),
		Top:        DefaultLabelArea,
	}
}

// Generate draws the hero image.
func Generate(opts Options) image.Image {
	o := opts.withDefaults()
	rng := rand.New(rand.NewSource(o.Seed)) // #nosec G404 - decorative output

	palette := o.Palette
	if len(palette) == 0 {
		palette = RandomPalette(DefaultPaletteSize, o.Seed)
	}
	n := o.Columns * o.Rows
	l := layoutFor(o)
	o.Logger.Debug("generating hero", "width", o.Width, "height", o.Height, "cells", n, "colours", len(palette))

	dc := gg.NewContext(o.Width, o.Height)
	dc.SetColor(o.Background.Color())
	dc.Clear()

	// Before: shuffled, washed out and jittered.
	before := cells(palette, n)
	rng.Shuffle(len(before), func(i, j int) { before[i], before[j] = before[j], before[i] })
	for i, c := range before {
		col, row := i%o.Columns, i/o.Columns
		x := DefaultMargin + float64(col)*(l.CellWidth+DefaultCellGap)
		y := l.Top + float64(row)*(l.CellHeight+DefaultCellGap)
		jx := (rng.Float64() - 0.5) * l.CellWidth * 0.3
		jy := (rng.Float64() - 0.5) * l.CellHeight * 0.3
		scale := 0.7 + rng.Float64()*0.3
		angle := (rng.Float64() - 0.5) * 0.35

		c = colour.AdjustSaturation(c, 0.35+rng.Float64()*0.35)
		c = colour.AdjustLightness(c, (rng.Float64()-0.3)*0.2)

		w, h := l.CellWidth*scale, l.CellHeight*scale
		cx, cy := x+l.CellWidth/2+jx, y+l.CellHeight/2+jy
		dc.Push()
		dc.RotateAbout(angle, cx, cy)
		dc.SetColor(c.Color())
		dc.DrawRoundedRectangle(cx-w/2, cy-h/2, w, h, rng.Float64()*DefaultCornerRadius)
		dc.Fill()
		dc.Pop()
	}

	// After: the same colours ordered by hue and lightness.
	after := cells(palette, n)
	colour.SortByHue(after)
	for i, c := range after {
		col, row := i%o.Columns, i/o.Columns
		x := l.Half + DefaultMargin + float64(col)*(l.CellWidth+DefaultCellGap)
		y := l.Top + float64(row)*(l.CellHeight+DefaultCellGap)
		dc.SetColor(c.Color())
		dc.DrawRoundedRectangle(x, y, l.CellWidth, l.CellHeight, DefaultCornerRadius)
		dc.Fill()
	}

	ink := colour.ReadableOn(o.Background.Color())
	dc.SetRGBA255(int(ink.R), int(ink.G), int(ink.B), 30)
	dc.SetLineWidth(2)
	dc.DrawLine(l.Half, DefaultMargin/2, l.Half, float64(o.Height)-DefaultMargin/2)
	dc.Stroke()

	if f, err := truetype.Parse(gobold.TTF); err == nil {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: DefaultLabelSize, DPI: 72, Hinting: font.HintingFull}))
		dc.SetColor(ink.Color())
		dc.DrawStringAnchored(o.BeforeLabel, l.Half/2, l.Top/2, 0.5, 0.5)
		dc.DrawStringAnchored(o.AfterLabel, l.Half+l.Half/2, l.Top/2, 0.5, 0.5)
	} else {
		o.Logger.Warn("failed to load label font", "error", err)
	}

	return dc.Image()
}

// Save writes img to path as a PNG.
func Save(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save hero image: %w", err)
	}
	return nil
}

// AfterCell returns the centre of the after grid cell at index i, useful for
// sampling rendered output.
func AfterCell(opts Options, i int) (x, y float64) {
	o := opts.withDefaults()
	l := layoutFor(o)
	col, row := i%o.Columns, i/o.Columns
	x = l.Half + DefaultMargin + float64(col)*(l.CellWidth+DefaultCellGap) + l.CellWidth/2
	y = l.Top + float64(row)*(l.CellHeight+DefaultCellGap) + l.CellHeight/2
	return x, y
}
