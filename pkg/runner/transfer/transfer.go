// Package transfer moves the whole document in and out of files.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/printers"
	"tableflip.dev/sip/pkg/state"
)

var errNoState = errors.New("can not transfer, no state")

// Export writes the document to Output, or Out when Output is empty.
type Export struct {
	Format  string
	Output  string
	Out     io.Writer
	Service *app.Service
}

func (n *Export) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	format, err := state.ParseFormat(n.Format)
	if err != nil {
		return err
	}
	data, err := n.Service.Export(format)
	if err != nil {
		return err
	}
	if n.Output == "" {
		_, err := n.Out.Write(data)
		return err
	}
	return os.WriteFile(n.Output, data, 0o600)
}

// Import replaces the document with the contents of Path. The format
// follows the file extension unless Format is set.
type Import struct {
	Path    string
	Format  string
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *Import) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	raw := n.Format
	if raw == "" {
		raw = FormatForPath(n.Path)
	}
	format, err := state.ParseFormat(raw)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(n.Path)
	if err != nil {
		return err
	}
	if err := n.Service.Import(data, format); err != nil {
		return fmt.Errorf("%s: %w", n.Path, err)
	}
	accts := n.Service.Accounts()
	if n.JSON {
		return printers.JSON(n.Out, accts)
	}
	_, err = fmt.Fprintf(n.Out, "imported %d account(s) from %s\n", len(accts), n.Path)
	return err
}

// FormatForPath guesses a format name from a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return string(state.FormatYAML)
	default:
		return string(state.FormatJSON)
	}
}
