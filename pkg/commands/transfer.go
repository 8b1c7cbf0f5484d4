package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/commands/options"
	"tableflip.dev/sip/pkg/runner/transfer"
)

func addExport(topLevel *cobra.Command, s *session) {
	fo := &options.FormatOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every account and day to stdout or a file.",
		Example: `
sip export > backup.json
sip export --format yaml --output backup.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				format := fo.Format
				if !cmd.Flags().Changed("format") && fo.Output != "" {
					format = transfer.FormatForPath(fo.Output)
				}
				r := transfer.Export{Format: format, Output: fo.Output, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	}

	options.AddFormatArg(cmd, fo, "json")
	options.AddOutputFileArg(cmd, fo)
	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command, s *session) {
	fo := &options.FormatOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all state with a previously exported document.",
		Long: `Import replaces every account and day with the contents of file.
The document must be an object with an "accounts" object; anything else is
rejected and the current state is kept.`,
		Example: `
sip import backup.json
sip import backup.yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := transfer.Import{Path: args[0], Format: fo.Format, JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	}

	options.AddFormatArg(cmd, fo, "")
	topLevel.AddCommand(cmd)
}
