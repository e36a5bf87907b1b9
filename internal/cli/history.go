package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/config"
	"github.com/jmylchreest/figaid/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Work with visual helper history archives",
	}
	cmd.AddCommand(newHistoryExtractCmd(a))
	return cmd
}

func newHistoryExtractCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <archive.tar.xz>",
		Short: "Unpack a history archive into the captures directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewBuilder().WithEnvConfig().WithFlags(cmd.Flags()).Build()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0]) // #nosec G304 - user-specified archive
			if err != nil {
				return fmt.Errorf("failed to open archive: %w", err)
			}
			defer f.Close()

			entries, err := history.Extract(f, cfg.CapturesDir)
			if err != nil {
				return err
			}
			a.log(cmd).Info("archive extracted", "entries", len(entries), "dir", cfg.CapturesDir)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			table := NewTable("Time", "Type", "Files")
			table.SetColumnMaxWidth(2, 60)
			for _, e := range entries {
				ts := time.UnixMilli(e.Timestamp).Format(time.DateTime)
				files := e.Files()
				desc := strconv.Itoa(len(files)) + " file(s)"
				if len(files) == 1 {
					desc = files[0]
				}
				table.AddRow(ts, string(e.Type), desc)
			}
			return table.Write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().String(config.FlagCapturesDir, config.DefaultCapturesDir, "directory to extract captures into ("+config.EnvCapturesDir+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entries as JSON")
	return cmd
}
