package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/commands/options"
	"tableflip.dev/sip/pkg/runner/status"
)

func addStatus(topLevel *cobra.Command, s *session) {
	fo := &options.FollowOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's total, goal and entries.",
		Example: `
sip status
sip status --follow
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := status.Status{
					Follow:  fo.Follow,
					JSON:    s.output.JSON,
					Out:     out,
					Log:     s.log,
					Service: svc,
				}
				return r.Do(ctx)
			})
		},
	}

	options.AddFollowArg(cmd, fo)
	topLevel.AddCommand(cmd)
}
