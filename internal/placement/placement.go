// Package placement finds a free spot on the canvas for a new artifact.
//
// The finder is a pure function of the requested size and a snapshot of the
// occupied regions. It keeps no state between calls and never mutates its
// inputs, so a single Finder may be shared between goroutines.
package placement

import (
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/figaid/internal/geometry"
)

// Zone identifies the strategy that produced a placement.
type Zone string

const (
	// ZoneEmptyCanvas is used when nothing occupies the canvas.
	ZoneEmptyCanvas Zone = "empty-canvas"

	// ZoneVerticalGap is used when the artifact fits between two stacked regions.
	ZoneVerticalGap Zone = "vertical-gap"

	// ZoneAbove is used when the artifact is placed above the topmost region.
	ZoneAbove Zone = "above"

	// ZoneRight is the unverified fallback to the right of the content.
	// Placements in this zone may still collide.
	ZoneRight Zone = "right"
)

// String returns the zone name.
func (z Zone) String() string {
	return string(z)
}

// Verified reports whether placements in this zone are checked against every
// occupied region before being returned.
func (z Zone) Verified() bool {
	return z != ZoneRight
}

// Result is a placement for the artifact's top-left corner.
type Result struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zone Zone    `json:"zone"`
}

// Bounds returns the rectangle the artifact would occupy at this placement.
func (r Result) Bounds(width, height float64) geometry.Rect {
	return geometry.NewRect(r.X, r.Y, width, height)
}

const (
	// DefaultPadding is the clearance kept around a new placement.
	DefaultPadding = 100.0

	// DefaultCeiling is the lowest y accepted for an "above" placement.
	DefaultCeiling = -3000.0

	// DefaultOriginX and DefaultOriginY are used on an empty canvas.
	DefaultOriginX = 100.0
	DefaultOriginY = 100.0
)

// Options configures a Finder.
type Options struct {
	// Padding is added as clearance around placements.
	Padding float64

	// Ceiling rejects "above" placements whose y is at or below this value.
	Ceiling float64

	// OriginX and OriginY are returned for an empty canvas.
	OriginX float64
	OriginY float64

	// RightmostByEdge selects the fallback anchor by its right edge instead of
	// its left edge. The default (false) picks the region with the greatest x.
	RightmostByEdge bool

	// Logger receives a debug line per strategy attempt. Nil disables logging.
	Logger hclog.Logger
}

// DefaultOptions returns the standard finder configuration.
func DefaultOptions() Options {
	return Options{
		Padding: DefaultPadding,
		Ceiling: DefaultCeiling,
		OriginX: DefaultOriginX,
		OriginY: DefaultOriginY,
	}
}

// Finder chooses non-overlapping positions for new artifacts.
type Finder struct {
	opts   Options
	logger hclog.Logger
}

// NewFinder creates a Finder with the given options.
func NewFinder(opts Options) *Finder {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Finder{opts: opts, logger: logger}
}

// Options returns the finder's configuration.
func (f *Finder) Options() Options {
	return f.opts
}

// Find is a convenience wrapper using DefaultOptions.
func Find(width, height float64, occupied []geometry.Region) Result {
	return NewFinder(DefaultOptions()).Find(width, height, occupied)
}

// Find returns a position for a width x height artifact. Strategies are tried
// in order and the first success wins: empty canvas, the first vertical gap
// from the top, above all content, and finally to the right of the content.
// Find always returns a result.
func (f *Finder) Find(width, height float64, occupied []geometry.Region) Result {
	f.logger.Debug("document scan", "visible_elements", len(occupied))

	if len(occupied) == 0 {
		return Result{X: f.opts.OriginX, Y: f.opts.OriginY, Zone: ZoneEmptyCanvas}
	}

	padding := f.opts.Padding

	sortedByY := make([]geometry.Region, len(occupied))
	copy(sortedByY, occupied)
	sort.SliceStable(sortedByY, func(i, j int) bool {
		return sortedByY[i].Y < sortedByY[j].Y
	})

	if res, ok := f.verticalGap(width, height, sortedByY, occupied); ok {
		return res
	}

	topmost := sortedByY[0]
	proposed := geometry.NewRect(topmost.X, topmost.Y-height-padding, width, height)
	if proposed.Y > f.opts.Ceiling {
		if !geometry.CollidesAny(proposed, occupied) {
			f.logger.Debug("placing above content", "x", proposed.X, "y", proposed.Y)
			return Result{X: proposed.X, Y: proposed.Y, Zone: ZoneAbove}
		}
	} else {
		f.logger.Debug("above placement exceeds ceiling", "y", proposed.Y, "ceiling", f.opts.Ceiling)
	}

	anchor := f.rightmost(occupied)
	res := Result{X: anchor.Right() + padding, Y: anchor.Y, Zone: ZoneRight}
	f.logger.Debug("placing to the right", "x", res.X, "y", res.Y, "anchor", anchor.Name)
	return res
}

// verticalGap walks adjacent pairs top to bottom and returns the first gap
// that fits the artifact without colliding with any region.
func (f *Finder) verticalGap(width, height float64, sortedByY, occupied []geometry.Region) (Result, bool) {
	padding := f.opts.Padding

	for i := 0; i < len(sortedByY)-1; i++ {
		current := sortedByY[i]
		next := sortedByY[i+1]

		gapStart := current.Bottom() + padding
		gapEnd := next.Y - padding
		if gapEnd-gapStart < height {
			continue
		}

		proposed := geometry.NewRect(current.X, gapStart, width, height)
		if geometry.CollidesAny(proposed, occupied) {
			f.logger.Trace("vertical gap blocked", "after", current.Name, "y", gapStart)
			continue
		}

		f.logger.Debug("found vertical gap", "x", proposed.X, "y", proposed.Y)
		return Result{X: proposed.X, Y: proposed.Y, Zone: ZoneVerticalGap}, true
	}

	return Result{}, false
}

// rightmost returns the anchor for the fallback strategy. Ties go to the
// region that appears last in the input.
func (f *Finder) rightmost(occupied []geometry.Region) geometry.Region {
	best := occupied[0]
	for _, region := range occupied[1:] {
		if f.opts.RightmostByEdge {
			if region.Right() >= best.Right() {
				best = region
			}
			continue
		}
		if region.X >= best.X {
			best = region
		}
	}
	return best
}
