package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generates shell completion scripts",
		Long: `To load completion run

. <(sip completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(sip completion)
`,
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) == 1 {
				shell = args[0]
			}
			out := cmd.OutOrStdout()
			switch shell {
			case "bash":
				return topLevel.GenBashCompletion(out)
			case "zsh":
				return topLevel.GenZshCompletion(out)
			case "fish":
				return topLevel.GenFishCompletion(out, true)
			default:
				return fmt.Errorf("unsupported shell %q", shell)
			}
		},
	}

	topLevel.AddCommand(cmd)
}

// accountCompletions offers account ids, annotated with their names.
func accountCompletions(cmd *cobra.Command, s *session, toComplete string) []string {
	if s.launcher == nil {
		if err := s.setup(cmd); err != nil {
			return nil
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := s.launcher.Ready(ctx)
	if err != nil {
		return nil
	}
	defer func() { _ = svc.Close(ctx) }()

	var ids []string
	for _, a := range svc.Accounts() {
		if strings.HasPrefix(a.ID, toComplete) {
			ids = append(ids, a.ID+"\t"+a.Name)
		}
	}
	return ids
}
