package store

import (
	"context"
	"fmt"
	"sync"

	"tableflip.dev/sip/pkg/state"
)

// Memory keeps the encoded document in process memory. It is the last
// resort when no persistent store is usable and is handy in tests.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Name implements Backend.
func (m *Memory) Name() string { return "memory" }

// Get implements Backend.
func (m *Memory) Get(_ context.Context) (*state.Root, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return decodeRoot(m.data)
}

// Put implements Backend.
func (m *Memory) Put(_ context.Context, doc *state.Root) error {
	data, err := state.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode root: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.writes++
	return nil
}

// Writes reports how many Puts have completed.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }
