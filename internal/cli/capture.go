package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/capture"
	"github.com/jmylchreest/figaid/internal/config"
)

type captureOptions struct {
	noOpen  bool
	analyze bool
	runner  capture.ProcessRunner
}

// addCaptureFlags registers the configuration flags used to build a
// Capturer.
func addCaptureFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().String(config.FlagCapturesDir, d.CapturesDir, "directory for captures ("+config.EnvCapturesDir+")")
	cmd.Flags().String(config.FlagApp, d.App, "design tool process name ("+config.EnvApp+")")
}

func newCapturer(cmd *cobra.Command, a *app, runner capture.ProcessRunner) (*capture.Capturer, config.Config, error) {
	cfg, err := config.NewBuilder().WithEnvConfig().WithFlags(cmd.Flags()).Build()
	if err != nil {
		return nil, cfg, err
	}
	return capture.New(capture.Options{
		Dir:    cfg.CapturesDir,
		App:    cfg.App,
		Runner: runner,
		Logger: a.log(cmd).Named("capture"),
	}), cfg, nil
}

func newCaptureCmd(a *app) *cobra.Command {
	opts := captureOptions{}
	cmd := &cobra.Command{
		Use:       "capture [screen|interactive|figma]",
		Short:     "Capture the screen or the design tool window",
		ValidArgs: []string{"screen", "interactive", "figma"},
		Long: `Capture a screenshot into the captures directory and print its details.

  screen       the whole screen (default)
  interactive  a region selected with the mouse
  figma        the design tool window, falling back to the screen

The captures folder is opened afterwards unless --no-open is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, a, args, opts)
		},
	}
	addCaptureFlags(cmd)
	addAnalysisFlags(cmd)
	cmd.Flags().BoolVar(&opts.noOpen, "no-open", false, "do not open the captures folder")
	cmd.Flags().BoolVar(&opts.analyze, "analyze", false, "analyse the capture and include the result")

	cmd.AddCommand(newCaptureListCmd(a))
	return cmd
}

func runCapture(cmd *cobra.Command, a *app, args []string, opts captureOptions) error {
	logger := a.log(cmd)
	target := capture.TargetScreen
	if len(args) > 0 {
		t, err := capture.ParseTarget(args[0])
		if err != nil {
			return err
		}
		target = t
	}

	c, cfg, err := newCapturer(cmd, a, opts.runner)
	if err != nil {
		return err
	}
	res, err := c.Capture(cmd.Context(), target)
	if err != nil {
		return err
	}
	logger.Info("captured", "target", target, "path", res.Path)

	out := any(res)
	if opts.analyze {
		an, closeFn, err := newAnalyzer(cmd, a, cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		result, err := an.Analyze(cmd.Context(), res.Path)
		if err != nil {
			return err
		}
		out = struct {
			*capture.Result
			Analysis any `json:"analysis"`
		}{res, result}
	}

	if !opts.noOpen {
		if err := capture.OpenFolder(cmd.Context(), opts.runner, filepath.Dir(res.Path)); err != nil {
			logger.Warn("could not open captures folder", "error", err)
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func newCaptureListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newCapturer(cmd, a, nil)
			if err != nil {
				return err
			}
			files, err := c.List()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				a.log(cmd).Info("no captures", "dir", c.Dir())
				return nil
			}
			for _, f := range files {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), f); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addCaptureFlags(cmd)
	return cmd
}
