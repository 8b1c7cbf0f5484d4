package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/sip/pkg/timeutil"
)

// HistoryOptions selects the window shown by history.
type HistoryOptions struct {
	Days int
	Last string
}

func AddHistoryArgs(cmd *cobra.Command, o *HistoryOptions) {
	cmd.Flags().IntVarP(&o.Days, "days", "d", 0,
		"Number of days ending today. Overrides --last.")
	cmd.Flags().StringVar(&o.Last, "last", timeutil.DefaultWindow,
		`Days to include, for example --last=10, --last=3d or --last=1w2d.`)
}
