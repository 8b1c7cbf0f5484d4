// Package history summarises past days.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/printers"
	"tableflip.dev/sip/pkg/state"
	"tableflip.dev/sip/pkg/timeutil"
)

type History struct {
	// Days wins over Last when positive.
	Days int
	// Last is a window such as 10, 3d or 2w.
	Last    string
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *History) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show history, no state")
	}
	days := n.Days
	if days > state.MaxHistoryDays {
		return fmt.Errorf("can not show more than %d days of history", state.MaxHistoryDays)
	}
	if days <= 0 {
		var err error
		if days, err = timeutil.ParseWindow(n.Last); err != nil {
			return err
		}
	}
	h := n.Service.History(days)
	if n.JSON {
		return printers.JSON(n.Out, h)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.History(h)
	return nil
}
