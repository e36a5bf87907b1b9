// blocks - Layout Describer Plugin (figaid)
//
// Splits a captured image into a grid, treats cells whose average colour
// stands out from the page background as content blocks, and reports them
// as elements with a coarse layout name.
//
// Build:
//
//	go build -o blocks
//
// Usage:
//
//	./blocks --plugin-info
//	figaid serve --plugin ./blocks
//	figaid analyze --plugin ./blocks capture.png
//
// Plugin Args:
//
//	grid: cells per side (default: 3)
//	threshold: colour distance that marks a block (default: 0.05)
package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/jmylchreest/figaid/internal/colour"
	imageutil "github.com/jmylchreest/figaid/internal/image"
	"github.com/jmylchreest/figaid/pkg/plugin"
)

const (
	defaultGrid      = 3
	defaultThreshold = 0.05
)

// BlocksPlugin implements plugin.Describer.
type BlocksPlugin struct{}

// GetMetadata implements plugin.Describer.
func (BlocksPlugin) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "blocks",
		Version:         "0.1.0",
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Reports content blocks and a coarse layout from colour contrast",
	}
}

// Describe implements plugin.Describer.
func (BlocksPlugin) Describe(_ context.Context, req plugin.DescribeRequest) (*plugin.DescribeResponse, error) {
	img, err := load(req)
	if err != nil {
		return nil, err
	}

	grid := intArg(req.PluginArgs, "grid", defaultGrid)
	threshold := floatArg(req.PluginArgs, "threshold", defaultThreshold)
	return describe(img, grid, threshold), nil
}

func load(req plugin.DescribeRequest) (image.Image, error) {
	data := req.Image
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(req.ImagePath) // #nosec G304 - path supplied by the host
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
	}
	img, _, err := imageutil.Decode(data)
	return img, err
}

func describe(img image.Image, grid int, threshold float64) *plugin.DescribeResponse {
	b := img.Bounds()
	cw, ch := b.Dx()/grid, b.Dy()/grid

	cells := make([]image.Rectangle, 0, grid*grid)
	means := make([]colour.RGB, 0, grid*grid)
	for gy := 0; gy < grid; gy++ {
		for gx := 0; gx < grid; gx++ {
			cell := image.Rect(b.Min.X+gx*cw, b.Min.Y+gy*ch, b.Min.X+(gx+1)*cw, b.Min.Y+(gy+1)*ch)
			cells = append(cells, cell)
			means = append(means, average(img, cell))
		}
	}
	bg := background(means, threshold)

	var elements []plugin.Element
	cols, rows := map[int]bool{}, map[int]bool{}
	for i, cell := range cells {
		if colour.Distance(means[i], bg) < threshold {
			continue
		}
		gx, gy := i%grid, i/grid
		cols[gx], rows[gy] = true, true
		elements = append(elements, plugin.Element{
			Label:  fmt.Sprintf("block %d,%d", gx, gy),
			Kind:   "block",
			X:      float64(cell.Min.X),
			Y:      float64(cell.Min.Y),
			Width:  float64(cw),
			Height: float64(ch),
		})
	}

	layout := "grid"
	switch {
	case len(elements) == 0:
		layout = "empty"
	case len(cols) == 1:
		layout = "single-column"
	case len(rows) == 1:
		layout = "row"
	}

	return &plugin.DescribeResponse{
		Description: fmt.Sprintf("%d content blocks on a %s background", len(elements), bg.Hex()),
		Elements:    elements,
		Layout:      layout,
	}
}

// background picks the cell colour shared by the most cells.
func background(means []colour.RGB, threshold float64) colour.RGB {
	best, bestCount := colour.RGB{}, -1
	for _, m := range means {
		n := 0
		for _, o := range means {
			if colour.Distance(m, o) < threshold {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = m, n
		}
	}
	return best
}

func average(img image.Image, r image.Rectangle) colour.RGB {
	var sr, sg, sb, n uint64
	step := max(1, r.Dx()/64)
	for y := r.Min.Y; y < r.Max.Y; y += step {
		for x := r.Min.X; x < r.Max.X; x += step {
			c := colour.ToRGB(img.At(x, y))
			sr += uint64(c.R)
			sg += uint64(c.G)
			sb += uint64(c.B)
			n++
		}
	}
	if n == 0 {
		return colour.RGB{}
	}
	return colour.RGB{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)}
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok && v >= 1 {
		return int(v)
	}
	return def
}

func floatArg(args map[string]any, key string, def float64) float64 {
	if v, ok := args[key].(float64); ok && v > 0 {
		return v
	}
	return def
}

func main() {
	plugin.Serve(BlocksPlugin{})
}
