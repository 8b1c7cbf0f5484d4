package app

import (
	"context"
	"time"

	"tableflip.dev/sip/pkg/state"
)

// DefaultDebounce is how long a save waits for further saves before it is
// written.
const DefaultDebounce = 100 * time.Millisecond

// Stopper cancels a scheduled call. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d. Tests substitute one that never fires and
// drive writes with Flush.
type Scheduler func(d time.Duration, f func()) Stopper

func timerScheduler(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// scheduleLocked records the current root as the pending write and restarts
// the debounce window. s.mu must be held.
func (s *Service) scheduleLocked() {
	s.metrics.saves.Inc()
	if s.pending != nil {
		s.metrics.coalesced.Inc()
	}
	s.pending = s.root.Clone()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.schedule(s.debounce, s.flushScheduled)
}

func (s *Service) flushScheduled() {
	// Errors are logged and counted by write.
	_ = s.Flush(context.Background())
}

// Flush writes the pending document now, if there is one. A document that
// fails to write stays pending unless a newer save has replaced it, so the
// next Flush or Close retries it.
func (s *Service) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	doc := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if doc == nil {
		return nil
	}
	if err := s.write(ctx, doc); err != nil {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = doc
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// write performs one physical write. s.writeMu must be held.
func (s *Service) write(ctx context.Context, doc *state.Root) error {
	s.metrics.writes.Inc()
	if err := s.backends.Primary.Put(ctx, doc); err != nil {
		s.metrics.writeErrors.Inc()
		s.log.WithError(err).WithField("backend", s.backends.Primary.Name()).Error("saving state failed")
		return err
	}
	return nil
}
