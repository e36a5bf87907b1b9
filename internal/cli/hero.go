package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/hero"
	imageutil "github.com/jmylchreest/figaid/internal/image"
	"github.com/jmylchreest/figaid/internal/showcase"
)

type heroOptions struct {
	output       string
	width        int
	height       int
	columns      int
	rows         int
	seed         int64
	palette      []string
	fromImage    string
	fromDocument string
	library      string
	colours      int
	before       string
	after        string
}

func newHeroCmd(a *app) *cobra.Command {
	d := hero.DefaultOptions()
	opts := heroOptions{}
	cmd := &cobra.Command{
		Use:   "hero",
		Short: "Generate a before and after hero image",
		Long: `Generate a hero image contrasting a scattered, washed out colour grid with
the same colours sorted by hue.

Colours come from --palette, an image, a document's showcase colours, or a
seeded random palette, in that order of preference.

Examples:
  figaid hero -o hero.png
  figaid hero -o hero.png --from-image wallpaper.jpg --colours 10
  figaid hero -o hero.png --palette "#FF5733,#33FF57,#3357FF"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHero(cmd, a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "hero.png", "output PNG path")
	cmd.Flags().IntVar(&opts.width, "width", d.Width, "image width")
	cmd.Flags().IntVar(&opts.height, "height", d.Height, "image height")
	cmd.Flags().IntVar(&opts.columns, "columns", d.Columns, "grid columns per half")
	cmd.Flags().IntVar(&opts.rows, "rows", d.Rows, "grid rows")
	cmd.Flags().Int64Var(&opts.seed, "seed", d.Seed, "random seed")
	cmd.Flags().StringSliceVar(&opts.palette, "palette", nil, "comma-separated hex colours")
	cmd.Flags().StringVar(&opts.fromImage, "from-image", "", "extract the palette from an image file or URL")
	cmd.Flags().StringVar(&opts.fromDocument, "from-document", "", "use the showcase colours of a document snapshot")
	cmd.Flags().StringVar(&opts.library, "library", showcase.DefaultLibrary, "library filter used with --from-document")
	cmd.Flags().IntVarP(&opts.colours, "colours", "c", hero.DefaultPaletteSize, "palette size for random and image palettes")
	cmd.Flags().StringVar(&opts.before, "before-label", d.BeforeLabel, "label of the left half")
	cmd.Flags().StringVar(&opts.after, "after-label", d.AfterLabel, "label of the right half")
	cmd.MarkFlagsMutuallyExclusive("palette", "from-image", "from-document")
	return cmd
}

func runHero(cmd *cobra.Command, a *app, opts heroOptions) error {
	logger := a.log(cmd)
	if opts.colours < 1 {
		return fmt.Errorf("colours must be at least 1")
	}

	palette, source, err := heroPalette(cmd, opts)
	if err != nil {
		return err
	}
	if len(palette) == 0 {
		return fmt.Errorf("no colours found in %s", source)
	}
	logger.Debug("hero palette", "source", source, "colors", len(palette))

	img := hero.Generate(hero.Options{
		Width:       opts.width,
		Height:      opts.height,
		Columns:     opts.columns,
		Rows:        opts.rows,
		Seed:        opts.seed,
		Palette:     palette,
		BeforeLabel: opts.before,
		AfterLabel:  opts.after,
		Logger:      logger.Named("hero"),
	})
	if err := hero.Save(opts.output, img); err != nil {
		return err
	}

	b := img.Bounds()
	logger.Info("hero image saved", "path", opts.output, "width", b.Dx(), "height", b.Dy())
	_, err = fmt.Fprintln(cmd.OutOrStdout(), opts.output)
	return err
}

func heroPalette(cmd *cobra.Command, opts heroOptions) ([]colour.RGB, string, error) {
	switch {
	case len(opts.palette) > 0:
		p, err := colour.ParseHexList(opts.palette)
		return p, "--palette", err
	case opts.fromImage != "":
		img, err := imageutil.NewSmartLoader().Load(cmd.Context(), opts.fromImage)
		if err != nil {
			return nil, "", err
		}
		p, err := hero.PaletteFromImage(img, opts.colours, opts.seed)
		return p, opts.fromImage, err
	case opts.fromDocument != "":
		doc, err := document.Load(cmd.Context(), opts.fromDocument)
		if err != nil {
			return nil, "", err
		}
		sopts := showcase.DefaultOptions()
		sopts.Library = opts.library
		return hero.PaletteFromShowcase(showcase.Build(doc, sopts)), opts.fromDocument, nil
	default:
		return hero.RandomPalette(opts.colours, opts.seed), "random palette", nil
	}
}
