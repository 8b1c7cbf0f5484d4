package app

import (
	"context"
	"sync"
)

// Launcher opens a Service at most once. Every caller of Ready, however
// many race during start-up, receives the same instance and error.
type Launcher struct {
	opts Options
	once sync.Once
	svc  *Service
	err  error
	done chan struct{}
}

// NewLauncher prepares a launcher; nothing is opened until Ready is called.
func NewLauncher(opts Options) *Launcher {
	return &Launcher{opts: opts, done: make(chan struct{})}
}

// Ready opens the Service on first use and waits for it. A cancelled ctx
// stops the wait, not the start-up.
func (l *Launcher) Ready(ctx context.Context) (*Service, error) {
	go l.once.Do(func() {
		l.svc, l.err = Open(context.WithoutCancel(ctx), l.opts)
		close(l.done)
	})
	select {
	case <-l.done:
		return l.svc, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
