// Package add records drinks.
package add

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/printers"
)

// ErrNotPositive rejects amounts the CLI never records.
var ErrNotPositive = errors.New("amount must be greater than zero")

type Add struct {
	Amount  float64
	JSON    bool
	Out     io.Writer
	Service *app.Service
}

type result struct {
	Entry   entry.Entry `json:"entry"`
	TotalML float64     `json:"total_ml"`
	GoalML  int         `json:"goal_ml"`
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no state")
	}
	if !entry.Finite(n.Amount) || n.Amount <= 0 {
		return ErrNotPositive
	}
	e, err := n.Service.AddEntry(n.Amount)
	if err != nil {
		return err
	}
	r := result{Entry: e, TotalML: n.Service.TodayTotal(), GoalML: n.Service.Goal()}
	if n.JSON {
		return printers.JSON(n.Out, r)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Added(r.Entry, r.TotalML, r.GoalML)
	return nil
}
