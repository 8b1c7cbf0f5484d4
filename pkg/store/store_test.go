package store

import (
	"time"

	"tableflip.dev/sip/pkg/state"
)

var testNow = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

type testConfig struct {
	path    string
	backend string
}

func (t testConfig) BasePath() string { return t.path }
func (t testConfig) Backend() string  { return t.backend }

// sampleRoot returns a normalized root with one entry in a named account.
func sampleRoot() *state.Root {
	r := state.Normalize(nil, testNow)
	id := state.CreateAccount(r, "Office", testNow)
	state.SetSelected(r, id, testNow)
	if _, err := state.AddEntry(r, 250, testNow); err != nil {
		panic(err)
	}
	return r
}
