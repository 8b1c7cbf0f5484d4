// Package app owns the authoritative state document. A Service loads it once
// through the migration chain, applies account and entry operations to it,
// and writes it back through a debounced writer.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/state"
	"tableflip.dev/sip/pkg/store"
	"tableflip.dev/sip/pkg/timeutil"
)

// ErrNoStorage is returned by Open when neither backends nor a storage
// configuration were supplied.
var ErrNoStorage = errors.New("app: no storage configured")

// Options configures Open. Backends or Store is required.
type Options struct {
	// Backends are used as given when set.
	Backends *store.Backends
	// Store is probed with store.Open when Backends is nil.
	Store store.Config
	Log   logrus.FieldLogger
	Clock timeutil.Clock
	// Debounce is the quiet period before a save is written. Zero means
	// DefaultDebounce; a negative value writes on the next scheduler tick.
	Debounce  time.Duration
	Scheduler Scheduler
	// Registerer receives the persistence counters when set.
	Registerer prometheus.Registerer
}

// Service is the root state manager. All methods are safe for concurrent
// use and are serialised.
type Service struct {
	mu       sync.Mutex
	root     *state.Root
	outcome  Outcome
	pending  *state.Root
	timer    Stopper
	closed   bool
	backends *store.Backends

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error

	log      logrus.FieldLogger
	clock    timeutil.Clock
	debounce time.Duration
	schedule Scheduler
	metrics  *metrics
}

// Open runs the migration chain and returns a ready Service. When the
// document did not come from the primary backend it is written there before
// Open returns, so the next start takes the primary path. A failing write is
// logged and counted, not returned.
func Open(ctx context.Context, opts Options) (*Service, error) {
	s := &Service{
		log:      opts.Log,
		clock:    opts.Clock,
		debounce: opts.Debounce,
		schedule: opts.Scheduler,
	}
	if s.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		s.log = l
	}
	if s.clock == nil {
		s.clock = timeutil.SystemClock{}
	}
	switch {
	case opts.Backends != nil && opts.Backends.Primary != nil:
		s.backends = opts.Backends
	case opts.Store != nil:
		s.backends = store.Open(ctx, opts.Store, s.log)
	default:
		return nil, ErrNoStorage
	}
	s.metrics = newMetrics(opts.Registerer)
	if s.debounce == 0 {
		s.debounce = DefaultDebounce
	} else if s.debounce < 0 {
		s.debounce = 0
	}
	if s.schedule == nil {
		s.schedule = timerScheduler
	}

	root, outcome := Migrate(ctx, s.backends, s.clock.Now(), s.log)
	s.root = root
	s.outcome = outcome
	s.log.WithFields(logrus.Fields{
		"source":  outcome.Source,
		"backend": s.backends.Primary.Name(),
	}).Debug("state loaded")

	if outcome.NeedsWrite() {
		s.writeMu.Lock()
		_ = s.write(ctx, root.Clone())
		s.writeMu.Unlock()
	}
	return s, nil
}

// Outcome reports how the start-up document was found.
func (s *Service) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Backend names the primary backend.
func (s *Service) Backend() string {
	return s.backends.Primary.Name()
}

// Degraded reports whether changes are only kept in memory.
func (s *Service) Degraded() bool {
	return s.backends.Degraded()
}

// Stats snapshots the persistence counters.
func (s *Service) Stats() Stats {
	return s.metrics.snapshot()
}

// Load returns a deep copy of the current document.
func (s *Service) Load() *state.Root {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.Clone()
}

// Save normalizes a copy of doc, makes it the current document and
// schedules it to be written. Later changes to doc have no effect.
func (s *Service) Save(doc *state.Root) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = state.Normalize(doc.Clone(), s.clock.Now())
	s.scheduleLocked()
}

// Reload re-reads the primary backend and adopts its document unless a
// local write is still pending. It reports whether the document was
// replaced. Reloading also rolls the document over to a new day.
func (s *Service) Reload(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.backends.Primary.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("app: reload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return false, nil
	}
	s.root = state.Normalize(doc, s.clock.Now())
	return true, nil
}

// Watch reports changes other processes make to the stored document.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	return store.Watch(ctx, s.backends.Dir, s.log)
}

// Close writes any pending change and releases the backends. Saves after
// Close update the in-memory document only.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.closeErr = errors.Join(s.Flush(ctx), s.backends.Close())
	})
	return s.closeErr
}

// mutate applies f to a copy of the document and, when f succeeds, makes the
// copy current and schedules a write. A failing f leaves the state untouched.
func (s *Service) mutate(f func(r *state.Root, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	next := s.root.Clone()
	if err := f(next, now); err != nil {
		return err
	}
	s.root = state.Normalize(next, now)
	s.scheduleLocked()
	return nil
}

// read runs f against the current document. Account resolution may repair
// the document in memory; such repairs are not written by themselves.
func (s *Service) read(f func(r *state.Root, now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.root, s.clock.Now())
}

// Accounts lists accounts sorted by name.
func (s *Service) Accounts() []state.AccountSummary {
	var out []state.AccountSummary
	s.read(func(r *state.Root, now time.Time) {
		state.Current(r, now)
		out = state.ListAccounts(r)
	})
	return out
}

// CurrentAccount describes the selected account.
func (s *Service) CurrentAccount() state.AccountSummary {
	var out state.AccountSummary
	s.read(func(r *state.Root, now time.Time) {
		id, a := state.Current(r, now)
		out = state.AccountSummary{ID: id, Name: a.Name, GoalML: a.Data.GoalML, Selected: true}
	})
	return out
}

// CreateAccount adds and selects a new account, returning its id.
func (s *Service) CreateAccount(name string) string {
	var id string
	_ = s.mutate(func(r *state.Root, now time.Time) error {
		id = state.CreateAccount(r, name, now)
		return nil
	})
	return id
}

// errUnchanged aborts a mutation without reporting an error to callers.
var errUnchanged = errors.New("app: unchanged")

// SelectAccount selects id. Unknown ids are ignored and report false.
func (s *Service) SelectAccount(id string) bool {
	err := s.mutate(func(r *state.Root, now time.Time) error {
		if !state.SetSelected(r, id, now) {
			return errUnchanged
		}
		return nil
	})
	return err == nil
}

// Goal returns the selected account's daily goal.
func (s *Service) Goal() int {
	var g int
	s.read(func(r *state.Root, now time.Time) { g = state.Goal(r, now) })
	return g
}

// SetGoal sets the selected account's daily goal and returns the stored
// value.
func (s *Service) SetGoal(ml float64) (int, error) {
	var g int
	err := s.mutate(func(r *state.Root, now time.Time) error {
		var err error
		g, err = state.SetGoal(r, ml, now)
		return err
	})
	return g, err
}

// AddEntry records ml for the selected account now.
func (s *Service) AddEntry(ml float64) (entry.Entry, error) {
	var e entry.Entry
	err := s.mutate(func(r *state.Root, now time.Time) error {
		var err error
		e, err = state.AddEntry(r, ml, now)
		return err
	})
	return e, err
}

// UndoLast removes the most recent entry of today. The document is written
// even when there was nothing to undo.
func (s *Service) UndoLast() (float64, bool) {
	var (
		ml float64
		ok bool
	)
	_ = s.mutate(func(r *state.Root, now time.Time) error {
		ml, ok = state.UndoLast(r, now)
		return nil
	})
	return ml, ok
}

// ResetToday clears today's entries for the selected account.
func (s *Service) ResetToday() {
	_ = s.mutate(func(r *state.Root, now time.Time) error {
		state.ResetToday(r, now)
		return nil
	})
}

// TodayTotal sums today's entries for the selected account.
func (s *Service) TodayTotal() float64 {
	var t float64
	s.read(func(r *state.Root, now time.Time) { t = state.TodayTotal(r, now) })
	return t
}

// TodayEntries returns today's entries, oldest first.
func (s *Service) TodayEntries() []entry.Entry {
	var es []entry.Entry
	s.read(func(r *state.Root, now time.Time) { es = state.TodayEntries(r, now) })
	return es
}

// Import replaces the whole document with data. Invalid data returns
// state.ErrInvalidImport and leaves the current document as it was.
func (s *Service) Import(data []byte, format state.Format) error {
	return s.mutate(func(r *state.Root, now time.Time) error {
		doc, err := state.ParseImport(data, format, now)
		if err != nil {
			return err
		}
		*r = *doc
		return nil
	})
}

// Export renders the current document.
func (s *Service) Export(format state.Format) ([]byte, error) {
	return state.Export(s.Load(), format)
}
