// Package cli provides the command-line interface for figaid.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/colour"
	"github.com/jmylchreest/figaid/internal/version"
)

// app holds state shared by all commands of one invocation.
type app struct {
	verbose bool
	quiet   bool
	noColor bool
	logger  hclog.Logger
}

// log returns the root logger, creating it on first use.
func (a *app) log(cmd *cobra.Command) hclog.Logger {
	if a.logger != nil {
		return a.logger
	}
	level := hclog.Info
	switch {
	case a.quiet:
		level = hclog.Error
	case a.verbose:
		level = hclog.Debug
	}
	color := hclog.AutoColor
	if a.noColor {
		color = hclog.ColorOff
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "figaid",
		Level:  level,
		Output: cmd.ErrOrStderr(),
		Color:  color,
	})
	return a.logger
}

// NewRootCmd builds the figaid command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "figaid",
		Short: "Design canvas helper: placement, colour showcases and visual capture",
		Long: `figaid helps automated design workflows on a shared canvas.

It finds clear space for new frames, builds colour showcases from a
document's styles and variables, captures the screen or the design tool
window, and runs a local visual helper service that records captures and
exports for later review.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if a.noColor {
				colour.DisableColourOutput = true
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colour previews and log colours")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(
		newPlaceCmd(a),
		newScanCmd(a),
		newShowcaseCmd(a),
		newHeroCmd(a),
		newCaptureCmd(a),
		newServeCmd(a),
		newAnalyzeCmd(a),
		newCompareCmd(a),
		newFeedbackCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), version.GetInfo())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONFile writes v as indented JSON to path, or to w when path is
// empty or "-".
func writeJSONFile(w io.Writer, path string, v any) error {
	if path == "" || path == "-" {
		return writeJSON(w, v)
	}
	f, err := os.Create(path) // #nosec G304 - user-specified output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// previewEnabled reports whether w is a terminal that accepts colour
// previews.
func previewEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && colour.SupportsANSIColours(f)
}
