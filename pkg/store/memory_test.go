package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/sip/pkg/state"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	want := sampleRoot()
	require.NoError(t, m.Put(ctx, want))
	assert.Equal(t, 1, m.Writes())

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemoryIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	r := sampleRoot()
	require.NoError(t, m.Put(ctx, r))

	// Mutating the caller's copy must not leak into the store.
	state.ResetToday(r, testNow)

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(250), state.TodayTotal(got, testNow))
}
