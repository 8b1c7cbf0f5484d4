package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/runner/accounts"
)

func addAccounts(topLevel *cobra.Command, s *session) {
	list := func(cmd *cobra.Command, _ []string) error {
		return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
			r := accounts.List{JSON: s.output.JSON, Out: out, Service: svc}
			return r.Do(ctx)
		})
	}

	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "List, create and select accounts.",
		Example: `
sip accounts
sip accounts create Office
sip accounts select office-1a2b3c4d
`,
		Args: cobra.NoArgs,
		RunE: list,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts; the selected one is starred.",
		Args:  cobra.NoArgs,
		RunE:  list,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an account and select it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := accounts.Create{Name: strings.Join(args, " "), JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Make another account the selected one.",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return accountCompletions(cmd, s, toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := accounts.Select{ID: args[0], JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	})

	topLevel.AddCommand(cmd)
}
