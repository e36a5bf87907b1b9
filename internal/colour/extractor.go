package colour

import (
	"image"
)

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract extracts a colour palette from an image.
	// The count parameter specifies the number of colours to extract.
	Extract(img image.Image, count int) (*Palette, error)
}

// ExtractTop extracts count clusters from img and returns the n heaviest.
func ExtractTop(e Extractor, img image.Image, count, n int) (*Palette, error) {
	palette, err := e.Extract(img, count)
	if err != nil {
		return nil, err
	}
	return palette.Top(n), nil
}
