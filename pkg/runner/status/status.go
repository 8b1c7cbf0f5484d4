// Package status shows today's progress, optionally following changes.
package status

import (
	"context"
	"errors"
	"io"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/printers"
)

// DefaultTick re-reads state once a minute so a follower picks up day
// rollover and writes it missed.
const DefaultTick = "@every 1m"

type Status struct {
	Follow bool
	// Tick is a cron spec for periodic reloads while following.
	Tick    string
	JSON    bool
	Out     io.Writer
	Log     logrus.FieldLogger
	Service *app.Service
}

func (n *Status) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show status, no state")
	}
	if err := n.print(); err != nil || !n.Follow {
		return err
	}
	return n.follow(ctx)
}

func (n *Status) follow(ctx context.Context) error {
	log := n.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	events, err := n.Service.Watch(ctx)
	if err != nil {
		log.WithError(err).Debug("not watching for changes")
	}

	ticks := make(chan struct{}, 1)
	schedule := n.Tick
	if schedule == "" {
		schedule = DefaultTick
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
		case <-ticks:
		}
		if _, err := n.Service.Reload(ctx); err != nil {
			log.WithError(err).Warn("reload failed")
			continue
		}
		if err := n.print(); err != nil {
			return err
		}
	}
}

func (n *Status) print() error {
	st := n.Service.Status()
	if n.JSON {
		return printers.JSON(n.Out, st)
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.Status(st)
	return nil
}
