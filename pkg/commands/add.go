package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command, s *session) {
	var amount float64

	cmd := &cobra.Command{
		Use:   "add <ml>",
		Short: "Record a drink for the selected account.",
		Example: `
sip add 250
sip add 330ml
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			var err error
			amount, err = entry.ParseAmount(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := add.Add{
					Amount:  amount,
					JSON:    s.output.JSON,
					Out:     out,
					Service: svc,
				}
				return r.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
