package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about where state is stored and how it was loaded.",
		Example: `
sip info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := info.Info{Settings: s.settings, JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
