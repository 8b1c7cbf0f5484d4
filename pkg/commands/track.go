package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/commands/options"
	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/runner/track"
)

func addUndo(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Remove the most recent entry of today.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := track.Undo{JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}

var errNeedsConfirmation = errors.New("refusing to reset without --yes when not running interactively")

func addReset(topLevel *cobra.Command, s *session) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all of today's entries for the selected account.",
		Example: `
sip reset
sip reset --yes
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				if !co.Yes {
					if s.output.JSON || !s.interactive() {
						return errNeedsConfirmation
					}
					n := len(svc.TodayEntries())
					if !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Clear %d entries from today?", n)) {
						_, err := fmt.Fprintln(out, "left as is")
						return err
					}
				}
				r := track.Reset{JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	}

	options.AddConfirmArg(cmd, co)
	topLevel.AddCommand(cmd)
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func addGoal(topLevel *cobra.Command, s *session) {
	var goal *float64

	cmd := &cobra.Command{
		Use:   "goal [ml]",
		Short: "Show or set the daily goal for the selected account.",
		Example: `
sip goal
sip goal 2500
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			goal = nil
			if len(args) == 1 {
				g, err := entry.ParseAmount(args[0])
				if err != nil {
					return err
				}
				goal = &g
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.run(cmd, func(ctx context.Context, svc *app.Service, out io.Writer) error {
				r := track.Goal{Set: goal, JSON: s.output.JSON, Out: out, Service: svc}
				return r.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
