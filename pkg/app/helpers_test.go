package app

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tableflip.dev/sip/pkg/state"
	"tableflip.dev/sip/pkg/store"
	"tableflip.dev/sip/pkg/timeutil"
)

var testNow = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

const testToday = "2024-03-10"

// manualScheduler records scheduled calls and runs them only when told.
type manualScheduler struct {
	mu        sync.Mutex
	scheduled int
	next      func()
}

type manualTimer struct {
	s  *manualScheduler
	fn func()
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.next == nil {
		return false
	}
	t.s.next = nil
	return true
}

func (s *manualScheduler) schedule(_ time.Duration, f func()) Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled++
	s.next = f
	return &manualTimer{s: s, fn: f}
}

// fire runs the most recently scheduled call, if it was not stopped.
func (s *manualScheduler) fire() bool {
	s.mu.Lock()
	f := s.next
	s.next = nil
	s.mu.Unlock()
	if f == nil {
		return false
	}
	f()
	return true
}

// flakyBackend wraps a memory backend with injectable failures.
type flakyBackend struct {
	*store.Memory
	getErr error
	putErr error
	// onPut runs before every write attempt.
	onPut func()
}

func (f *flakyBackend) Name() string { return "flaky" }

func (f *flakyBackend) Get(ctx context.Context) (*state.Root, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Memory.Get(ctx)
}

func (f *flakyBackend) Put(ctx context.Context, doc *state.Root) error {
	if f.onPut != nil {
		f.onPut()
	}
	if f.putErr != nil {
		return f.putErr
	}
	return f.Memory.Put(ctx, doc)
}

type legacyStub struct {
	log *state.DailyLog
	err error
}

func (l legacyStub) GetLegacy(context.Context) (*state.DailyLog, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.log == nil {
		return nil, store.ErrNotFound
	}
	return l.log, nil
}

var errDisk = errors.New("disk on fire")

// openManual opens a service over b with a scheduler that only fires on
// demand.
func openManual(t *testing.T, b *store.Backends) (*Service, *manualScheduler, *timeutil.FixedClock) {
	t.Helper()
	sched := &manualScheduler{}
	clock := &timeutil.FixedClock{T: testNow}
	svc, err := Open(context.Background(), Options{
		Backends:  b,
		Clock:     clock,
		Scheduler: sched.schedule,
	})
	require.NoError(t, err)
	return svc, sched, clock
}

func nan() float64 { return math.NaN() }
