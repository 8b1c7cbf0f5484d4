package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/commands/options"
	"tableflip.dev/sip/pkg/runner/history"
)

func addHistory(topLevel *cobra.Command, s *session) {
	ho := &options.HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily totals against the goal.",
		Long: `History lists one total per day, oldest first, ending today.

Examples:
  sip history
  sip history --days 7
  sip history --last 1w2d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				days := ho.Days
				if days <= 0 && !cmd.Flags().Changed("last") {
					days = s.settings.HistoryDays
				}
				r := history.History{
					Days:    days,
					Last:    ho.Last,
					JSON:    s.output.JSON,
					Out:     out,
					Service: svc,
				}
				return r.Do(ctx)
			})
		},
	}

	options.AddHistoryArgs(cmd, ho)
	topLevel.AddCommand(cmd)
}
