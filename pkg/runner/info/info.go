package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gosuri/uitable"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/printers"
	"tableflip.dev/sip/pkg/store"
)

type Info struct {
	Settings *store.Settings
	JSON     bool
	Out      io.Writer
	Service  *app.Service
}

type report struct {
	ConfigPath string          `json:"config_path,omitempty"`
	Settings   *store.Settings `json:"settings"`
	app.Description
}

func (n *Info) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not describe, no state")
	}
	if n.Settings == nil {
		var err error
		if n.Settings, err = store.LoadConfig(); err != nil {
			return err
		}
	}
	d, err := n.Service.Describe(ctx)
	if err != nil {
		return err
	}
	r := report{ConfigPath: os.Getenv("SIP_CONFIG_PATH"), Settings: n.Settings, Description: d}
	if n.JSON {
		return printers.JSON(n.Out, r)
	}

	if r.ConfigPath != "" {
		_, _ = fmt.Fprintln(n.Out, "SIP_CONFIG_PATH found on env, using", r.ConfigPath)
	} else {
		_, _ = fmt.Fprintln(n.Out, "SIP_CONFIG_PATH env var not set")
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("path", n.Settings.Path)
	tbl.AddRow("backend", fmt.Sprintf("%s (configured %s)", d.Backend, n.Settings.Store))
	if d.Fallback != "" {
		tbl.AddRow("fallback", d.Fallback)
	}
	if d.Degraded {
		tbl.AddRow("warning", "no persistent store, changes are lost on exit")
	}
	tbl.AddRow("loaded from", d.Source.String())
	if len(d.Skipped) > 0 {
		tbl.AddRow("unreadable", strings.Join(d.Skipped, ", "))
	}
	tbl.AddRow("accounts", d.Accounts)
	if d.Schema > 0 {
		tbl.AddRow("schema", d.Schema)
		tbl.AddRow("revision", d.Revision)
	}
	tbl.AddRow("debounce", n.Settings.Debounce)
	_, err = fmt.Fprintln(n.Out, tbl)
	return err
}
