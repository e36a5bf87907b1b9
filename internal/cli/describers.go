package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/analysis"
	"github.com/jmylchreest/figaid/internal/config"
	"github.com/jmylchreest/figaid/internal/plugin/executor"
)

// addAnalysisFlags registers the describer configuration flags.
func addAnalysisFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Bool(config.FlagGemini, d.Gemini, "describe images with Gemini, needs GOOGLE_API_KEY ("+config.EnvGemini+")")
	cmd.Flags().String(config.FlagGeminiModel, d.GeminiModel, "Gemini model name ("+config.EnvGeminiModel+")")
	cmd.Flags().StringSlice(config.FlagPlugins, nil, "describer plugin binary, repeatable ("+config.EnvPlugins+")")
}

// newAnalyzer builds an Analyzer with the describers enabled in cfg.
// Describers that cannot be set up are skipped with a warning. The returned
// function stops any plugin processes.
func newAnalyzer(cmd *cobra.Command, a *app, cfg config.Config) (*analysis.Analyzer, func(), error) {
	logger := a.log(cmd)
	var describers []analysis.Describer
	var executors []*executor.PluginExecutor

	for _, path := range cfg.Plugins {
		exec, err := executor.New(path, logger.Named("plugin"))
		if err != nil {
			logger.Warn("skipping describer plugin", "path", path, "error", err)
			continue
		}
		if info, err := exec.Info(cmd.Context()); err == nil {
			logger.Debug("describer plugin", "name", info.Name, "version", info.Version)
		}
		executors = append(executors, exec)
		describers = append(describers, analysis.NewPluginDescriber(exec.Name(), exec))
	}

	if cfg.Gemini {
		g, err := analysis.NewGeminiDescriber(cmd.Context(), cfg.GeminiModel)
		if err != nil {
			logger.Warn("Gemini describer disabled", "error", err)
		} else {
			describers = append(describers, g)
		}
	}

	closeFn := func() {
		for _, e := range executors {
			e.Close()
		}
	}
	return analysis.New(analysis.Options{
		Describers: describers,
		Logger:     logger.Named("analysis"),
	}), closeFn, nil
}
