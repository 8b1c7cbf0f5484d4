package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/sip/pkg/commands/options"
)

func New() *cobra.Command {
	return newCommand(newSession())
}

func newCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sip",
		Short: base.Wrap80("Track how much water you drink, per account, on the command line."),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	options.AddOutputArg(cmd, &s.output)
	options.AddVerboseArg(cmd, &s.verbose)

	AddCommands(cmd, s)
	return cmd
}

func AddCommands(topLevel *cobra.Command, s *session) {
	addStatus(topLevel, s)
	addAdd(topLevel, s)
	addUndo(topLevel, s)
	addReset(topLevel, s)
	addGoal(topLevel, s)
	addHistory(topLevel, s)
	addAccounts(topLevel, s)
	addExport(topLevel, s)
	addImport(topLevel, s)
	addInfo(topLevel, s)
	addVersion(topLevel)
	addCompletions(topLevel)
}
