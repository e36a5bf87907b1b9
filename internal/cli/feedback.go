package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/feedback"
	httputil "github.com/jmylchreest/figaid/internal/util/http"
)

type feedbackOptions struct {
	url      string
	document string
	timeout  time.Duration
}

func newFeedbackCmd(a *app) *cobra.Command {
	opts := feedbackOptions{}
	cmd := &cobra.Command{
		Use:   "feedback <png>...",
		Short: "Send exported frames to the visual helper",
		Long: `Send exported frame images to a running visual helper.

Each file is sent under its base name. With --document, nodes of the same
name supply type and bounds, and the document viewport is sent along.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc *document.Document
			if opts.document != "" {
				d, err := document.Load(cmd.Context(), opts.document)
				if err != nil {
					return err
				}
				doc = d
			}

			exports, err := feedback.ExportsFromFiles(args, doc)
			if err != nil {
				return err
			}

			var viewport document.Viewport
			if doc != nil {
				viewport = doc.Viewport
			}

			client := feedback.NewClient(opts.url, httputil.FetchOptions{Timeout: opts.timeout})
			resp, err := client.Send(cmd.Context(), exports, viewport)
			if err != nil {
				return err
			}
			a.log(cmd).Info("feedback sent", "saved", resp.Saved)
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&opts.url, "url", "u", feedback.DefaultURL, "visual helper base URL")
	cmd.Flags().StringVarP(&opts.document, "document", "d", "", "document snapshot supplying bounds and viewport")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}
