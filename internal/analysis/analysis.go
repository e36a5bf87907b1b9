// Package analysis inspects captured images: file metadata, dominant
// colours, a description from the describer chain and visual comparison.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/figaid/internal/colour"
	imageutil "github.com/jmylchreest/figaid/internal/image"
	"github.com/jmylchreest/figaid/pkg/plugin"
)

// Defaults.
const (
	DefaultColourCount = 5
	clusterCount       = 8
	extractorSeed      = 1
)

// Details is the content analysis of an image.
type Details struct {
	Description string           `json:"description"`
	Elements    []plugin.Element `json:"elements"`
	Colors      []string         `json:"colors"`
	Layout      string           `json:"layout"`
	Describer   string           `json:"describer,omitempty"`
}

// Result is everything known about an analysed image.
type Result struct {
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Format   string    `json:"format"`
	Analysis Details   `json:"analysis"`
}

// Options configures an Analyzer.
type Options struct {
	// Describers are tried in order. The static default is always appended.
	Describers []Describer

	// Colours is the number of dominant colours to report.
	Colours int

	Logger hclog.Logger
}

// Analyzer analyses image files.
type Analyzer struct {
	chain   *Chain
	colours int
	loader  *imageutil.FileLoader
	logger  hclog.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	colours := opts.Colours
	if colours <= 0 {
		colours = DefaultColourCount
	}

	describers := append(append([]Describer(nil), opts.Describers...), StaticDescriber{})
	return &Analyzer{
		chain:   NewChain(logger.Named("describer"), describers...),
		colours: colours,
		loader:  imageutil.NewFileLoader(),
		logger:  logger,
	}
}

// Analyze reads the image at path and describes it.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	res := &Result{
		Size:    stat.Size(),
		Created: stat.ModTime(),
		Analysis: Details{
			Elements: []plugin.Element{},
			Colors:   []string{},
			Layout:   UnknownLayout,
		},
	}

	info, err := imageutil.DecodeInfo(path)
	if err != nil {
		return nil, err
	}
	res.Width, res.Height, res.Format = info.Width, info.Height, info.Format

	img, err := a.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	palette, err := colour.ExtractTop(colour.NewSeededKMeansExtractor(extractorSeed), img, clusterCount, a.colours)
	if err != nil {
		a.logger.Warn("colour extraction failed", "file", filepath.Base(path), "error", err)
	} else {
		res.Analysis.Colors = palette.ToHex()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	req := plugin.DescribeRequest{
		ImagePath: abs,
		Format:    info.Format,
		Width:     info.Width,
		Height:    info.Height,
		Colors:    res.Analysis.Colors,
	}

	resp, name, err := a.chain.Describe(ctx, req)
	if err != nil {
		// The static describer never fails, so only cancellation ends up here.
		return nil, err
	}
	res.Analysis.Description = resp.Description
	res.Analysis.Describer = name
	if len(resp.Elements) > 0 {
		res.Analysis.Elements = resp.Elements
	}
	if resp.Layout != "" {
		res.Analysis.Layout = resp.Layout
	}

	a.logger.Debug("analysed image", "file", filepath.Base(path), "size", res.Size, "describer", name)
	return res, nil
}
