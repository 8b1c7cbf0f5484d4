// Package track provides runners that change today's log in place.
package track

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/printers"
)

var errNoState = errors.New("can not track, no state")

// ErrGoalNotPositive rejects goals the CLI never stores.
var ErrGoalNotPositive = errors.New("goal must be greater than zero")

// Undo removes the most recent entry of today.
type Undo struct {
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *Undo) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	ml, ok := n.Service.UndoLast()
	total := n.Service.TodayTotal()
	if n.JSON {
		return printers.JSON(n.Out, map[string]interface{}{
			"removed":  ok,
			"ml":       ml,
			"total_ml": total,
		})
	}
	if !ok {
		_, err := fmt.Fprintln(n.Out, "nothing to undo today")
		return err
	}
	_, err := fmt.Fprintf(n.Out, "removed %s ml, %s ml today\n", entry.FormatAmount(ml), entry.FormatAmount(total))
	return err
}

// Reset clears today's entries.
type Reset struct {
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *Reset) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	n.Service.ResetToday()
	if n.JSON {
		return printers.JSON(n.Out, n.Service.Status())
	}
	_, err := fmt.Fprintln(n.Out, "today's entries cleared")
	return err
}

// Goal shows the daily goal, or sets it when Set is non-nil.
type Goal struct {
	Set     *float64
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

func (n *Goal) Do(ctx context.Context) error {
	if n.Service == nil {
		return errNoState
	}
	g := n.Service.Goal()
	if n.Set != nil {
		if !entry.Finite(*n.Set) || *n.Set <= 0 {
			return ErrGoalNotPositive
		}
		var err error
		if g, err = n.Service.SetGoal(*n.Set); err != nil {
			return err
		}
	}
	if n.JSON {
		return printers.JSON(n.Out, map[string]int{"goal_ml": g})
	}
	_, err := fmt.Fprintf(n.Out, "daily goal: %d ml\n", g)
	return err
}
