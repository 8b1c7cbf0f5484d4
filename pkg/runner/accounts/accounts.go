// Package accounts contains runners for account management commands.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/printers"
)

var errNoState = errors.New("can not manage accounts, no state")

// List prints every account.
type List struct {
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *List) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	accts := n.Service.Accounts()
	if n.JSON {
		return printers.JSON(n.Out, accts)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Accounts(accts)
	return nil
}

// Create adds an account and selects it.
type Create struct {
	Name    string
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *Create) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	id := n.Service.CreateAccount(strings.TrimSpace(n.Name))
	cur := n.Service.CurrentAccount()
	if n.JSON {
		return printers.JSON(n.Out, cur)
	}
	_, err := fmt.Fprintf(n.Out, "created and selected %q (%s)\n", cur.Name, id)
	return err
}

// Select switches the active account.
type Select struct {
	ID      string
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *Select) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	if !n.Service.SelectAccount(n.ID) {
		return fmt.Errorf("no account with id %q", n.ID)
	}
	cur := n.Service.CurrentAccount()
	if n.JSON {
		return printers.JSON(n.Out, cur)
	}
	_, err := fmt.Fprintf(n.Out, "selected %q (%s)\n", cur.Name, cur.ID)
	return err
}
