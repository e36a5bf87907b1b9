package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/geometry"
	"github.com/jmylchreest/figaid/internal/placement"
)

type placeOptions struct {
	width           float64
	height          float64
	document        string
	regions         string
	padding         float64
	ceiling         float64
	rightmostByEdge bool
}

type placeOutput struct {
	placement.Result
	Verified bool          `json:"verified"`
	Bounds   geometry.Rect `json:"bounds"`
	Overlap  float64       `json:"overlap"`
	Occupied int           `json:"occupied"`
}

func newPlaceCmd(a *app) *cobra.Command {
	opts := placeOptions{}
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Find clear space for a new frame",
		Long: `Find a position for a new frame that does not overlap existing content.

Obstacles come from a document snapshot (its visible top-level nodes) or from
a JSON/YAML file holding a list of regions. With neither, the canvas is empty.

Examples:
  figaid place --width 850 --height 400 --document page.json
  figaid place --width 300 --height 200 --regions regions.yaml --padding 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlace(cmd, a, opts)
		},
	}
	cmd.Flags().Float64VarP(&opts.width, "width", "W", 0, "frame width (required)")
	cmd.Flags().Float64VarP(&opts.height, "height", "H", 0, "frame height (required)")
	cmd.Flags().StringVarP(&opts.document, "document", "d", "", "document snapshot file or URL")
	cmd.Flags().StringVarP(&opts.regions, "regions", "r", "", "JSON or YAML file with occupied regions")
	cmd.Flags().Float64Var(&opts.padding, "padding", placement.DefaultPadding, "clearance around the frame")
	cmd.Flags().Float64Var(&opts.ceiling, "ceiling", placement.DefaultCeiling, "lowest y accepted above the content")
	cmd.Flags().BoolVar(&opts.rightmostByEdge, "rightmost-by-edge", false, "anchor the right-hand fallback on the furthest right edge")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	cmd.MarkFlagsMutuallyExclusive("document", "regions")
	return cmd
}

func runPlace(cmd *cobra.Command, a *app, opts placeOptions) error {
	if geometry.NewRect(0, 0, opts.width, opts.height).IsEmpty() {
		return fmt.Errorf("width and height must be positive")
	}
	if opts.padding < 0 {
		return fmt.Errorf("padding cannot be negative")
	}

	occupied, err := loadOccupied(cmd, opts)
	if err != nil {
		return err
	}

	popts := placement.DefaultOptions()
	popts.Padding = opts.padding
	popts.Ceiling = opts.ceiling
	popts.RightmostByEdge = opts.rightmostByEdge
	popts.Logger = a.log(cmd).Named("placement")

	res := placement.NewFinder(popts).Find(opts.width, opts.height, occupied)
	if !res.Zone.Verified() {
		a.log(cmd).Warn("no verified clear space, placed to the right of the content", "x", res.X, "y", res.Y)
	}

	bounds := res.Bounds(opts.width, opts.height)
	return writeJSON(cmd.OutOrStdout(), placeOutput{
		Result:   res,
		Verified: res.Zone.Verified(),
		Bounds:   bounds,
		Overlap:  geometry.OverlapArea(bounds, occupied),
		Occupied: len(occupied),
	})
}

func loadOccupied(cmd *cobra.Command, opts placeOptions) ([]geometry.Region, error) {
	switch {
	case opts.document != "":
		doc, err := document.Load(cmd.Context(), opts.document)
		if err != nil {
			return nil, err
		}
		return doc.OccupiedRegions(), nil
	case opts.regions != "":
		return loadRegions(opts.regions)
	default:
		return nil, nil
	}
}

// loadRegions reads a list of regions from a JSON or YAML file.
func loadRegions(path string) ([]geometry.Region, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user-specified regions file
	if err != nil {
		return nil, fmt.Errorf("failed to read regions: %w", err)
	}

	var regions []geometry.Region
	switch document.DetectFormat(path) {
	case document.FormatYAML:
		err = yaml.Unmarshal(data, &regions)
	default:
		err = json.Unmarshal(data, &regions)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse regions %s: %w", path, err)
	}
	return regions, nil
}
