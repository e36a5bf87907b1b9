package colour

import (
	"image/color"
	"math"
	"sort"
)

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c color.Color) float64 {
	rgb := ToRGB(c)
	rf := gammaCorrect(float64(rgb.R) / 255.0)
	gf := gammaCorrect(float64(rgb.G) / 255.0)
	bf := gammaCorrect(float64(rgb.B) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is black against white.
func ContrastRatio(c1, c2 color.Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)

	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// ReadableOn returns black or white, whichever contrasts more with bg.
func ReadableOn(bg color.Color) RGB {
	black := RGB{}
	white := RGB{R: 255, G: 255, B: 255}
	if ContrastRatio(black.Color(), bg) >= ContrastRatio(white.Color(), bg) {
		return black
	}
	return white
}

// RGBToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func RGBToHSL(rgb RGB) (h, s, l float64) {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	l = (maxVal + minVal) / 2.0

	if delta == 0 {
		return 0, 0, l
	}

	if l < 0.5 {
		s = delta / (maxVal + minVal)
	} else {
		s = delta / (2.0 - maxVal - minVal)
	}

	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}

	h *= 60
	return h, s, l
}

// HSLToRGB converts HSL to RGB colour space.
// h is hue (0-360), s is saturation (0-1), l is lightness (0-1).
func HSLToRGB(h, s, l float64) RGB {
	if s == 0 {
		v := unitToByte(l)
		return RGB{R: v, G: v, B: v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return RGB{
		R: unitToByte(hueToRGB(p, q, h+120)),
		G: unitToByte(hueToRGB(p, q, h)),
		B: unitToByte(hueToRGB(p, q, h-120)),
	}
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	for t < 0 {
		t += 360
	}
	for t >= 360 {
		t -= 360
	}

	if t < 60 {
		return p + (q-p)*t/60
	}
	if t < 180 {
		return q
	}
	if t < 240 {
		return p + (q-p)*(240-t)/60
	}
	return p
}

// AdjustSaturation scales the saturation of a colour by factor.
// factor < 1.0 mutes the colour, factor > 1.0 makes it more vibrant.
func AdjustSaturation(rgb RGB, factor float64) RGB {
	h, s, l := RGBToHSL(rgb)
	return HSLToRGB(h, math.Max(0.0, math.Min(1.0, s*factor)), l)
}

// AdjustLightness shifts the lightness of a colour by delta, clamped to [0, 1].
func AdjustLightness(rgb RGB, delta float64) RGB {
	h, s, l := RGBToHSL(rgb)
	return HSLToRGB(h, s, math.Max(0.0, math.Min(1.0, l+delta)))
}

// SortByHue orders colours by hue, then lightness. Greys (no saturation)
// are placed last, dark to light.
func SortByHue(colours []RGB) {
	sort.SliceStable(colours, func(i, j int) bool {
		hi, si, li := RGBToHSL(colours[i])
		hj, sj, lj := RGBToHSL(colours[j])

		greyI, greyJ := si < 0.05, sj < 0.05
		if greyI != greyJ {
			return greyJ
		}
		if greyI || hi == hj {
			return li < lj
		}
		return hi < hj
	})
}
