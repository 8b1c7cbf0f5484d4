package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/sip/pkg/state"
	"tableflip.dev/sip/pkg/store"
)

const legacyDoc = `{"goal_ml":2500,"days":{"2024-01-01":{"entries":[{"ml":250,"ts":"08:00"}]}}}`

func legacyLog(t *testing.T) *state.DailyLog {
	t.Helper()
	l, err := state.UnmarshalLegacy([]byte(legacyDoc))
	require.NoError(t, err)
	return l
}

func seeded(t *testing.T, ml float64) *store.Memory {
	t.Helper()
	r := state.Normalize(nil, testNow)
	_, err := state.AddEntry(r, ml, testNow)
	require.NoError(t, err)
	m := store.NewMemory()
	require.NoError(t, m.Put(context.Background(), r))
	return m
}

func TestMigratePrefersPrimary(t *testing.T) {
	primary := seeded(t, 111)
	b := &store.Backends{
		Primary:  primary,
		Fallback: seeded(t, 222),
		Legacy:   legacyStub{log: legacyLog(t)},
	}
	svc, _, _ := openManual(t, b)

	assert.Equal(t, SourcePrimary, svc.Outcome().Source)
	assert.Equal(t, float64(111), svc.TodayTotal())
	assert.Equal(t, 1, primary.Writes(), "primary is not rewritten")
}

func TestMigrateFromFallbackWritesForward(t *testing.T) {
	primary := store.NewMemory()
	b := &store.Backends{
		Primary:  primary,
		Fallback: seeded(t, 222),
		Legacy:   legacyStub{log: legacyLog(t)},
	}
	svc, _, _ := openManual(t, b)

	assert.Equal(t, SourceFallback, svc.Outcome().Source)
	assert.Equal(t, float64(222), svc.TodayTotal())

	got, err := primary.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, svc.Load(), got)

	// The next start takes the primary path.
	again, _, _ := openManual(t, b)
	assert.Equal(t, SourcePrimary, again.Outcome().Source)
}

func TestMigrateWrapsLegacyDocument(t *testing.T) {
	primary := store.NewMemory()
	svc, _, _ := openManual(t, &store.Backends{
		Primary: primary,
		Legacy:  legacyStub{log: legacyLog(t)},
	})
	require.Equal(t, SourceLegacy, svc.Outcome().Source)

	doc := svc.Load()
	require.Len(t, doc.Accounts, 1)
	acct := doc.Accounts[doc.Selected]
	require.NotNil(t, acct)
	assert.Equal(t, "Personal", acct.Name)
	assert.Equal(t, 2500, acct.Data.GoalML)

	day := acct.Data.Bucket("2024-01-01")
	require.NotNil(t, day)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, float64(250), day.Entries[0].ML)
	assert.Equal(t, "08:00", day.Entries[0].TS)
	assert.NotNil(t, acct.Data.Bucket(testToday), "normalized with a bucket for today")

	assert.Equal(t, 1, primary.Writes(), "migrated document is written once")
}

func TestMigrateLegacyFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.LegacyKey), []byte(legacyDoc), 0o600))
	disk, err := store.NewDisk(dir, nil)
	require.NoError(t, err)

	svc, _, _ := openManual(t, &store.Backends{Primary: disk, Legacy: disk, Dir: dir})
	assert.Equal(t, SourceLegacy, svc.Outcome().Source)
	assert.Equal(t, 2500, svc.Goal())

	root, err := disk.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, root.Accounts, 1)
}

func TestMigrateDefaultIsPersistedOnce(t *testing.T) {
	primary := store.NewMemory()
	b := &store.Backends{Primary: primary}

	first, _, _ := openManual(t, b)
	assert.Equal(t, SourceDefault, first.Outcome().Source)
	assert.Equal(t, 1, primary.Writes())

	second, _, _ := openManual(t, b)
	assert.Equal(t, SourcePrimary, second.Outcome().Source)
	assert.Equal(t, first.CurrentAccount().ID, second.CurrentAccount().ID, "default account id is stable")
	assert.Equal(t, 1, primary.Writes())
}

func TestMigrateSkipsCorruptSources(t *testing.T) {
	log, hook := test.NewNullLogger()
	primary := &flakyBackend{Memory: store.NewMemory(), getErr: store.ErrCorrupt}
	fallback := &flakyBackend{Memory: store.NewMemory(), getErr: errDisk}
	b := &store.Backends{
		Primary:  primary,
		Fallback: fallback,
		Legacy:   legacyStub{err: store.ErrCorrupt},
	}

	root, out := Migrate(context.Background(), b, testNow, log)

	assert.Equal(t, SourceDefault, out.Source)
	assert.Equal(t, []string{"flaky", "flaky", "legacy"}, out.Skipped)
	assert.True(t, state.Valid(root, testNow))
	assert.Len(t, hook.AllEntries(), 3)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestMigrateCorruptPrimaryUsesLegacy(t *testing.T) {
	primary := &flakyBackend{Memory: store.NewMemory(), getErr: store.ErrCorrupt}
	svc, _, _ := openManual(t, &store.Backends{
		Primary: primary,
		Legacy:  legacyStub{log: legacyLog(t)},
	})

	out := svc.Outcome()
	assert.Equal(t, SourceLegacy, out.Source)
	assert.Equal(t, []string{"flaky"}, out.Skipped)
	assert.Equal(t, 1, primary.Writes())
}

func TestMigrateKeepsLooselyTypedPrimary(t *testing.T) {
	dir := t.TempDir()
	doc := `{"selected":"work","accounts":{` +
		`"work":{"name":"Work","data":{"goal_ml":1999.6,"days":{"` + testToday + `":{"entries":[{"ml":"250","ts":"08:00"}]}}}},` +
		`"home":{"name":"Home","data":{"goal_ml":"1500","days":{}}}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.RootKey), []byte(doc), 0o600))
	disk, err := store.NewDisk(dir, nil)
	require.NoError(t, err)

	svc, _, _ := openManual(t, &store.Backends{Primary: disk, Legacy: disk})

	assert.Equal(t, SourcePrimary, svc.Outcome().Source)
	assert.Empty(t, svc.Outcome().Skipped)
	assert.Len(t, svc.Accounts(), 2)
	assert.Equal(t, 2000, svc.Goal())
	assert.Equal(t, float64(250), svc.TodayTotal())
}

func TestSourceString(t *testing.T) {
	for src, want := range map[Source]string{
		SourcePrimary:  "primary",
		SourceFallback: "fallback",
		SourceLegacy:   "legacy",
		SourceDefault:  "default",
		Source(42):     "unknown",
	} {
		assert.Equal(t, want, src.String())
		text, err := src.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(text))
	}
}
