package colour

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Extraction limits.
const (
	MaxExtractCount      = 256
	DefaultMaxSamples    = 4096
	DefaultMaxIterations = 20
)

// KMeansExtractor finds the dominant colours of an image with weighted
// k-means in CIE Lab space, so clusters agree with Distance. Pixels are
// sampled on a grid and folded into a histogram of distinct colours before
// clustering; screenshots have few distinct colours and large flat areas.
type KMeansExtractor struct {
	maxIterations int
	maxSamples    int
	rng           *rand.Rand
}

// NewKMeansExtractor creates an extractor with a random seed.
func NewKMeansExtractor() *KMeansExtractor {
	return NewSeededKMeansExtractor(rand.Int63()) // #nosec G404 - not security sensitive
}

// NewSeededKMeansExtractor creates an extractor whose results are
// reproducible for a given seed.
func NewSeededKMeansExtractor(seed int64) *KMeansExtractor {
	return &KMeansExtractor{
		maxIterations: DefaultMaxIterations,
		maxSamples:    DefaultMaxSamples,
		rng:           rand.New(rand.NewSource(seed)), // #nosec G404 - reproducible sampling
	}
}

// bin is one distinct sampled colour and how often it was seen.
type bin struct {
	rgb   RGB
	lab   lab
	count int
}

type lab [3]float64

func toLab(c RGB) lab {
	l, a, b := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Lab()
	return lab{l, a, b}
}

func (p lab) color() color.Color {
	r, g, b := colorful.Lab(p[0], p[1], p[2]).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func (p lab) dist2(q lab) float64 {
	d0, d1, d2 := p[0]-q[0], p[1]-q[1], p[2]-q[2]
	return d0*d0 + d1*d1 + d2*d2
}

// Extract returns up to count colours with their share of the sampled
// pixels as weights. Images with no more than count distinct colours return
// those colours exactly, most frequent first.
func (e *KMeansExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}
	if count > MaxExtractCount {
		return nil, fmt.Errorf("color count too large: %d (maximum: %d)", count, MaxExtractCount)
	}

	bins, total := histogram(img, e.maxSamples)
	if total == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	if count >= len(bins) {
		sort.SliceStable(bins, func(i, j int) bool { return bins[i].count > bins[j].count })
		colors := make([]color.Color, len(bins))
		weights := make([]float64, len(bins))
		for i, b := range bins {
			colors[i] = b.rgb.Color()
			weights[i] = float64(b.count) / float64(total)
		}
		return NewPaletteWithWeights(colors, weights), nil
	}

	centroids, assign := e.cluster(bins, count)
	weights := make([]float64, count)
	for i, b := range bins {
		weights[assign[i]] += float64(b.count) / float64(total)
	}
	colors := make([]color.Color, count)
	for i, c := range centroids {
		colors[i] = c.color()
	}
	return NewPaletteWithWeights(colors, weights), nil
}

// histogram samples img on a grid of at most maxSamples points and counts
// each distinct colour. Bins keep first-seen order.
func histogram(img image.Image, maxSamples int) ([]bin, int) {
	b := img.Bounds()
	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Ceil(math.Sqrt(float64(n) / float64(maxSamples))))
	}

	index := make(map[RGB]int)
	var bins []bin
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := ToRGB(img.At(x, y))
			i, ok := index[c]
			if !ok {
				i = len(bins)
				index[c] = i
				bins = append(bins, bin{rgb: c, lab: toLab(c)})
			}
			bins[i].count++
			total++
		}
	}
	return bins, total
}

// cluster runs weighted k-means until no bin changes cluster. k must be
// smaller than len(bins).
func (e *KMeansExtractor) cluster(bins []bin, k int) ([]lab, []int) {
	centroids := e.seed(bins, k)
	assign := make([]int, len(bins))
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < e.maxIterations; iter++ {
		changed := false
		for i, b := range bins {
			if n := nearest(b.lab, centroids); n != assign[i] {
				assign[i] = n
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([]lab, k)
		counts := make([]int, k)
		for i, b := range bins {
			c, w := assign[i], float64(b.count)
			sums[c][0] += b.lab[0] * w
			sums[c][1] += b.lab[1] * w
			sums[c][2] += b.lab[2] * w
			counts[c] += b.count
		}
		// Empty clusters keep their previous centroid.
		for c := range centroids {
			if counts[c] > 0 {
				n := float64(counts[c])
				centroids[c] = lab{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
			}
		}
	}
	return centroids, assign
}

// seed picks k distinct bins with k-means++, weighting each candidate by its
// pixel count times its squared distance to the closest chosen centroid.
func (e *KMeansExtractor) seed(bins []bin, k int) []lab {
	centroids := make([]lab, 0, k)
	d2 := make([]float64, len(bins))
	for i := range d2 {
		d2[i] = 1
	}

	for len(centroids) < k {
		total := 0.0
		for i, b := range bins {
			total += float64(b.count) * d2[i]
		}

		pick := -1
		if total > 0 {
			target := e.rng.Float64() * total
			for i, b := range bins {
				target -= float64(b.count) * d2[i]
				if target <= 0 && d2[i] > 0 {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			for i := range bins {
				if d2[i] > 0 {
					pick = i
					break
				}
			}
		}

		chosen := bins[pick].lab
		centroids = append(centroids, chosen)
		for i, b := range bins {
			d2[i] = min(d2[i], b.lab.dist2(chosen))
		}
	}
	return centroids
}

func nearest(p lab, centroids []lab) int {
	best, bestDist := 0, math.MaxFloat64
	for i, c := range centroids {
		if d := p.dist2(c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
