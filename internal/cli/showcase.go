package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/placement"
	"github.com/jmylchreest/figaid/internal/showcase"
)

type showcaseOptions struct {
	library  string
	title    string
	output   string
	png      string
	scale    float64
	write    string
	measured bool
	padding  float64
}

func newShowcaseCmd(a *app) *cobra.Command {
	opts := showcaseOptions{}
	cmd := &cobra.Command{
		Use:   "showcase <document>",
		Short: "Build a colour showcase frame for a document",
		Long: `Collect the document's colour styles, colour variables and library colours,
lay them out as a showcase frame and place it in clear space on the page.

The showcase is printed as JSON. It can also be rendered to PNG, and the
document can be saved with the frame appended.

Examples:
  figaid showcase page.json --png showcase.png
  figaid showcase page.yaml --library Brand --write page-with-showcase.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowcase(cmd, a, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.library, "library", "l", showcase.DefaultLibrary, "library name filter for library colour variables")
	cmd.Flags().StringVar(&opts.title, "title", "", "header title (default \"<library> Color Library\")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the showcase JSON to a file instead of stdout")
	cmd.Flags().StringVar(&opts.png, "png", "", "render the showcase to a PNG file")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "PNG render scale")
	cmd.Flags().StringVarP(&opts.write, "write", "w", "", "save the document with the showcase appended")
	cmd.Flags().BoolVar(&opts.measured, "measured", false, "place using the laid out size instead of the fixed estimate")
	cmd.Flags().Float64Var(&opts.padding, "padding", placement.DefaultPadding, "clearance around the frame")
	return cmd
}

func runShowcase(cmd *cobra.Command, a *app, source string, opts showcaseOptions) error {
	logger := a.log(cmd)

	doc, err := document.Load(cmd.Context(), source)
	if err != nil {
		return err
	}

	sopts := showcase.DefaultOptions()
	sopts.Library = opts.library
	sopts.Title = opts.title
	sopts.UseMeasuredSize = opts.measured
	sopts.Placement.Padding = opts.padding
	sopts.Logger = logger.Named("showcase")

	s := showcase.Build(doc, sopts)
	logger.Info("showcase built", "colors", s.Count, "x", s.Placement.X, "y", s.Placement.Y, "zone", s.Placement.Zone)
	if s.Note != "" {
		logger.Warn(s.Note)
	}
	if s.Tip != "" {
		logger.Info(s.Tip)
	}

	if opts.png != "" {
		if opts.scale <= 0 {
			return fmt.Errorf("scale must be positive")
		}
		if err := showcase.SavePNG(opts.png, s, opts.scale); err != nil {
			return err
		}
		logger.Info("showcase rendered", "path", opts.png)
	}

	if opts.write != "" {
		s.Apply(doc)
		if err := doc.Save(opts.write); err != nil {
			return err
		}
		logger.Info("document saved", "path", opts.write)
	}

	return writeJSONFile(cmd.OutOrStdout(), opts.output, s)
}
