package app

import (
	"context"

	"tableflip.dev/sip/pkg/store"
)

// Description reports where state lives and how it got there.
type Description struct {
	Backend  string   `json:"backend"`
	Fallback string   `json:"fallback,omitempty"`
	Dir      string   `json:"dir,omitempty"`
	Degraded bool     `json:"degraded"`
	Source   Source   `json:"source"`
	Skipped  []string `json:"skipped,omitempty"`
	Accounts int      `json:"accounts"`
	// Revision and Schema are only known for the sqlite backend.
	Revision int64 `json:"revision,omitempty"`
	Schema   int   `json:"schema_version,omitempty"`
	Stats    Stats `json:"stats"`
}

// Describe gathers a Description. Backend errors are returned after the
// fields that could be filled.
func (s *Service) Describe(ctx context.Context) (Description, error) {
	out := s.Outcome()
	d := Description{
		Backend:  s.backends.Primary.Name(),
		Dir:      s.backends.Dir,
		Degraded: s.backends.Degraded(),
		Source:   out.Source,
		Skipped:  out.Skipped,
		Accounts: len(s.Accounts()),
		Stats:    s.Stats(),
	}
	if s.backends.Fallback != nil {
		d.Fallback = s.backends.Fallback.Name()
	}
	db, ok := s.backends.Primary.(*store.SQLite)
	if !ok {
		return d, nil
	}
	var err error
	if d.Revision, err = db.Revision(ctx); err != nil {
		return d, err
	}
	d.Schema, err = db.SchemaVersion(ctx)
	return d, err
}
