package colour

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHex parses "#RGB" or "#RRGGBB" (the hash is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// ParseHexList parses a list of hex colours, failing on the first bad entry.
func ParseHexList(values []string) ([]RGB, error) {
	out := make([]RGB, 0, len(values))
	for _, v := range values {
		rgb, err := ParseHex(v)
		if err != nil {
			return nil, err
		}
		out = append(out, rgb)
	}
	return out, nil
}

// Distance returns the perceptual distance between two colours in CIE Lab
// space. 0 means identical; values below ~0.02 are hard to tell apart.
func Distance(a, b RGB) float64 {
	ca, _ := colorful.MakeColor(a.Color())
	cb, _ := colorful.MakeColor(b.Color())
	return ca.DistanceLab(cb)
}
