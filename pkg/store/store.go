// Package store persists the root document. Three backends share one
// contract: SQLite (transactional, preferred), diskv (simple files, also home
// of the pre-multi-account document) and memory (degraded, lost on exit).
// Open probes them once at start-up and hands back the usable set.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"tableflip.dev/sip/pkg/state"
)

var (
	// ErrNotFound reports that nothing has been stored yet.
	ErrNotFound = errors.New("store: document not found")
	// ErrCorrupt reports stored bytes that do not parse as a document.
	ErrCorrupt = errors.New("store: corrupt document")
)

// Backend is a durable single-document store. Every Put is a full overwrite.
type Backend interface {
	Name() string
	Get(ctx context.Context) (*state.Root, error)
	Put(ctx context.Context, doc *state.Root) error
	Close() error
}

// LegacySource reads the pre-multi-account document, a bare daily log.
type LegacySource interface {
	GetLegacy(ctx context.Context) (*state.DailyLog, error)
}

// Backends is the result of the capability probe.
type Backends struct {
	// Primary receives every write.
	Primary Backend
	// Fallback is an older location of a current-format root, or nil.
	Fallback Backend
	// Legacy holds the single-account document, or nil.
	Legacy LegacySource
	// Dir is the data directory; empty when nothing is on disk.
	Dir string
}

// Degraded reports whether writes only live in memory.
func (b *Backends) Degraded() bool {
	_, ok := b.Primary.(*Memory)
	return ok
}

// Close releases every backend once.
func (b *Backends) Close() error {
	var errs []error
	if b.Primary != nil {
		errs = append(errs, b.Primary.Close())
	}
	if b.Fallback != nil && b.Fallback != b.Primary {
		errs = append(errs, b.Fallback.Close())
	}
	return errors.Join(errs...)
}

func decodeRoot(data []byte) (*state.Root, error) {
	if !gjson.ValidBytes(data) || !gjson.GetBytes(data, "accounts").IsObject() {
		return nil, fmt.Errorf("%w: not a root document", ErrCorrupt)
	}
	r, err := state.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return r, nil
}

func decodeLegacy(data []byte) (*state.DailyLog, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: not a legacy document", ErrCorrupt)
	}
	l, err := state.UnmarshalLegacy(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return l, nil
}

func quiet(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
