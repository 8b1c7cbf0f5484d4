package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/sip/pkg/state"
	"tableflip.dev/sip/pkg/store"
)

// Source says where the start-up document came from.
type Source int

const (
	// SourcePrimary means the primary backend already held a root.
	SourcePrimary Source = iota
	// SourceFallback means a root was found in the fallback backend.
	SourceFallback
	// SourceLegacy means a single-account document was wrapped as "Personal".
	SourceLegacy
	// SourceDefault means nothing usable was stored.
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceFallback:
		return "fallback"
	case SourceLegacy:
		return "legacy"
	case SourceDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Outcome describes a migration run.
type Outcome struct {
	Source Source `json:"source"`
	// Skipped names the sources that existed but could not be read.
	Skipped []string `json:"skipped,omitempty"`
}

// NeedsWrite reports whether the document must be written to the primary
// backend to make the next start take the primary path.
func (o Outcome) NeedsWrite() bool {
	return o.Source != SourcePrimary
}

// Migrate chooses the start-up document by priority: a root in the primary
// backend, a root in the fallback backend, the legacy single-account
// document, and finally a fresh default. Sources that fail to read or parse
// are logged and treated as absent. The result is always normalized.
func Migrate(ctx context.Context, b *store.Backends, now time.Time, log logrus.FieldLogger) (*state.Root, Outcome) {
	var out Outcome
	skip := func(name string, err error) {
		out.Skipped = append(out.Skipped, name)
		log.WithError(err).WithField("source", name).Warn("ignoring unreadable stored state")
	}

	if r, err := b.Primary.Get(ctx); err == nil {
		out.Source = SourcePrimary
		return state.Normalize(r, now), out
	} else if !errors.Is(err, store.ErrNotFound) {
		skip(b.Primary.Name(), err)
	}

	if b.Fallback != nil {
		if r, err := b.Fallback.Get(ctx); err == nil {
			out.Source = SourceFallback
			log.WithField("from", b.Fallback.Name()).Info("moving stored state to the primary backend")
			return state.Normalize(r, now), out
		} else if !errors.Is(err, store.ErrNotFound) {
			skip(b.Fallback.Name(), err)
		}
	}

	if b.Legacy != nil {
		if l, err := b.Legacy.GetLegacy(ctx); err == nil {
			out.Source = SourceLegacy
			log.Info("upgrading single-account state")
			return wrapLegacy(l, now), out
		} else if !errors.Is(err, store.ErrNotFound) {
			skip("legacy", err)
		}
	}

	out.Source = SourceDefault
	return state.Normalize(nil, now), out
}

// wrapLegacy turns a bare daily log into a root with one "Personal" account
// holding it verbatim.
func wrapLegacy(l *state.DailyLog, now time.Time) *state.Root {
	id := state.NewAccountID(state.DefaultAccountName, nil)
	r := &state.Root{
		Selected: id,
		Accounts: map[string]*state.Account{
			id: {Name: state.DefaultAccountName, Data: l},
		},
	}
	return state.Normalize(r, now)
}

// MarshalText renders the source by name.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
