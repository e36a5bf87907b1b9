package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/config"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Describe an image with the configured describers",
		Long: `Analyse an image the way the visual helper analyses captures: file
metadata, dominant colours and a description from the first describer that
answers (plugins, then Gemini, then a static default).

Examples:
  figaid analyze captures/screen_1700000000000.png
  GOOGLE_API_KEY=... figaid analyze --gemini shot.png
  figaid analyze --plugin ./describer shot.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewBuilder().WithEnvConfig().WithFlags(cmd.Flags()).Build()
			if err != nil {
				return err
			}
			an, closeFn, err := newAnalyzer(cmd, a, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := an.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	addAnalysisFlags(cmd)
	return cmd
}
