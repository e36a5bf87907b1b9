package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/analysis"
	imageutil "github.com/jmylchreest/figaid/internal/image"
)

func newCompareCmd(a *app) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "compare <before> <after>",
		Short: "Compare two images",
		Long: `Compare two images (paths or URLs) and print their similarity, the
changed area and a short summary.

With --threshold the command fails when similarity is below the threshold,
which makes it usable as a visual regression check.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := analysis.CompareSources(cmd.Context(), imageutil.NewSmartLoader(), args[0], args[1])
			if err != nil {
				return err
			}
			a.log(cmd).Debug("compared", "similarity", cmp.Similarity, "differences", len(cmp.Differences))
			if err := writeJSON(cmd.OutOrStdout(), cmp); err != nil {
				return err
			}
			if threshold > 0 && cmp.Similarity < threshold {
				return fmt.Errorf("similarity %.4f is below threshold %.4f", cmp.Similarity, threshold)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "fail when similarity is below this value (0 to 1)")
	return cmd
}
