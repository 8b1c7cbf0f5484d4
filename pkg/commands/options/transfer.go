package options

import (
	"github.com/spf13/cobra"
)

// FormatOptions picks the import/export encoding.
type FormatOptions struct {
	Format string
	Output string
}

func AddFormatArg(cmd *cobra.Command, o *FormatOptions, def string) {
	cmd.Flags().StringVarP(&o.Format, "format", "f", def,
		"Document format. One of 'json' or 'yaml'.")
}

func AddOutputFileArg(cmd *cobra.Command, o *FormatOptions) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", "",
		"Write to this file instead of stdout.")
}
