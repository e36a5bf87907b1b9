package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/capture"
	"github.com/jmylchreest/figaid/internal/config"
	"github.com/jmylchreest/figaid/internal/history"
	"github.com/jmylchreest/figaid/internal/placement"
	"github.com/jmylchreest/figaid/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var restore string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the visual helper service",
		Long: `Run the local visual helper HTTP service.

Endpoints:
  GET  /                  dashboard
  POST /capture           capture the screen or the design tool window
  POST /visual-feedback   receive exports from the design tool
  GET  /history           recent captures and exports
  GET  /history/archive   download history and captures as tar.xz
  GET  /history/{id}      one history entry
  GET  /monitor           capture stream (Server-Sent Events)
  POST /compare           compare two images
  POST /place             find clear space for a frame
  GET  /health            service health

Settings can also be given as FIGAID_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a, restore)
		},
	}
	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&restore, "restore", "", "load history from an archive downloaded from /history/archive")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, restore string) error {
	logger := a.log(cmd)
	cfg, err := config.NewBuilder().WithEnvConfig().WithFlags(cmd.Flags()).Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := history.NewStore(0)
	if restore != "" {
		if err := restoreHistory(store, restore, cfg.CapturesDir); err != nil {
			return err
		}
		logger.Info("history restored", "entries", store.Len())
	}

	analyzer, closeFn, err := newAnalyzer(cmd, a, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	popts := placement.DefaultOptions()
	popts.Padding = cfg.Padding
	popts.Logger = logger.Named("placement")

	srv, err := server.New(server.Options{
		Addr:        cfg.Addr(),
		CapturesDir: cfg.CapturesDir,
		Capturer: capture.New(capture.Options{
			Dir:    cfg.CapturesDir,
			App:    cfg.App,
			Logger: logger.Named("capture"),
		}),
		Analyzer:        analyzer,
		History:         store,
		Finder:          placement.NewFinder(popts),
		HistoryLimit:    cfg.HistoryLimit,
		MonitorInterval: cfg.MonitorInterval,
		Logger:          logger.Named("server"),
	})
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func restoreHistory(store *history.Store, path, capturesDir string) error {
	f, err := os.Open(path) // #nosec G304 - user-specified archive
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = store.Restore(f, capturesDir)
	return err
}
