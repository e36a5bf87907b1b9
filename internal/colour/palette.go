// Package colour provides colour conversion, de-duplication and palette
// extraction for design documents and captured images.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Palette represents an ordered collection of colours.
type Palette struct {
	Colors []color.Color

	// Weights holds the relative share of each colour (same length as Colors)
	// when the palette came from clustering. It may be nil.
	Weights []float64
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colors []color.Color) *Palette {
	return &Palette{
		Colors: colors,
	}
}

// NewPaletteWithWeights creates a Palette whose colours carry relative weights.
func NewPaletteWithWeights(colors []color.Color, weights []float64) *Palette {
	return &Palette{
		Colors:  colors,
		Weights: weights,
	}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// RGB represents a colour in 8-bit RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as an upper-case hex string (e.g., "#1A2B3C").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B)
}

// Color converts the RGB value to an opaque color.RGBA.
func (rgb RGB) Color() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// UnitRGB is a colour with channels in the 0..1 range, as used by design tools.
type UnitRGB struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a,omitempty" yaml:"a,omitempty"`
}

// RGB converts the unit colour to 8-bit channels, rounding to nearest.
func (u UnitRGB) RGB() RGB {
	return FromUnit(u.R, u.G, u.B)
}

// Hex returns the upper-case hex form of the unit colour.
func (u UnitRGB) Hex() string {
	return u.RGB().Hex()
}

// Key returns a de-duplication key with the given number of decimals.
func (u UnitRGB) Key(decimals int) string {
	return Key(u.R, u.G, u.B, decimals)
}

// FromUnit converts 0..1 channels to an RGB value using round(v*255).
// Out-of-range channels are clamped.
func FromUnit(r, g, b float64) RGB {
	return RGB{R: unitToByte(r), G: unitToByte(g), B: unitToByte(b)}
}

func unitToByte(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Key formats unit channels with a fixed number of decimals so colours that
// differ only by float noise compare equal, e.g. "0.100-0.200-0.300".
func Key(r, g, b float64, decimals int) string {
	return fmt.Sprintf("%.*f-%.*f-%.*f", decimals, r, decimals, g, decimals, b)
}

// ParseKey reverses Key.
func ParseKey(key string) (UnitRGB, bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return UnitRGB{}, false
	}
	var ch [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return UnitRGB{}, false
		}
		ch[i] = v
	}
	return UnitRGB{R: ch[0], G: ch[1], B: ch[2]}, true
}

// ToHex returns the palette colours as hex strings, in palette order.
func (p *Palette) ToHex() []string {
	rgbs := p.ToRGBSlice()
	out := make([]string, len(rgbs))
	for i, c := range rgbs {
		out[i] = c.Hex()
	}
	return out
}

// ToRGBSlice converts the palette colours to RGB structs.
func (p *Palette) ToRGBSlice() []RGB {
	rgbColors := make([]RGB, len(p.Colors))
	for i, c := range p.Colors {
		rgbColors[i] = ToRGB(c)
	}
	return rgbColors
}

// Top returns a palette of the n heaviest colours, heaviest first. Without
// weights the first n colours are returned.
func (p *Palette) Top(n int) *Palette {
	if n > len(p.Colors) {
		n = len(p.Colors)
	}
	if len(p.Weights) != len(p.Colors) {
		return NewPalette(append([]color.Color(nil), p.Colors[:n]...))
	}

	idx := make([]int, len(p.Colors))
	for i := range idx {
		idx[i] = i
	}
	// Insertion sort keeps equal weights in their original order.
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && p.Weights[idx[j]] > p.Weights[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}

	colors := make([]color.Color, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		colors[i] = p.Colors[idx[i]]
		weights[i] = p.Weights[idx[i]]
	}
	return NewPaletteWithWeights(colors, weights)
}
