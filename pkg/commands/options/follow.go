package options

import (
	"github.com/spf13/cobra"
)

// FollowOptions
type FollowOptions struct {
	Follow bool
}

func AddFollowArg(cmd *cobra.Command, o *FollowOptions) {
	cmd.Flags().BoolVarP(&o.Follow, "follow", "f", false,
		"Keep running and redraw when the state changes.")
}
