package state

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestAddEntryRoundTrip(t *testing.T) {
	r := Normalize(nil, testNow)
	before := TodayTotal(r, testNow)
	e, err := AddEntry(r, 250, testNow)
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if e.TS != "09:30" {
		t.Fatalf("expected ts 09:30, got %q", e.TS)
	}
	if got := TodayTotal(r, testNow); got != before+250 {
		t.Fatalf("expected total %v, got %v", before+250, got)
	}
}

func TestUndoLast(t *testing.T) {
	r := Normalize(nil, testNow)
	before := TodayTotal(r, testNow)
	if _, err := AddEntry(r, 300, testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := AddEntry(r, 150, testNow); err != nil {
		t.Fatal(err)
	}
	removed, ok := UndoLast(r, testNow)
	if !ok || removed != 150 {
		t.Fatalf("expected to undo 150, got %v (ok=%v)", removed, ok)
	}
	if got := TodayTotal(r, testNow); got != before+300 {
		t.Fatalf("expected total %v, got %v", before+300, got)
	}
}

func TestUndoLastEmpty(t *testing.T) {
	r := Normalize(nil, testNow)
	removed, ok := UndoLast(r, testNow)
	if ok || removed != 0 {
		t.Fatalf("expected zero sentinel, got %v (ok=%v)", removed, ok)
	}
}

func TestAddEntryPassesNonPositive(t *testing.T) {
	r := Normalize(nil, testNow)
	if _, err := AddEntry(r, -50, testNow); err != nil {
		t.Fatalf("non-positive amounts are caller policy, got %v", err)
	}
	if got := TodayTotal(r, testNow); got != -50 {
		t.Fatalf("expected -50, got %v", got)
	}
}

func TestAddEntryRejectsNonFinite(t *testing.T) {
	r := Normalize(nil, testNow)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := AddEntry(r, v, testNow); !errors.Is(err, ErrNonFiniteAmount) {
			t.Fatalf("expected ErrNonFiniteAmount for %v, got %v", v, err)
		}
	}
	if got := len(TodayEntries(r, testNow)); got != 0 {
		t.Fatalf("rejected amounts must not be stored, got %d entries", got)
	}
}

func TestResetToday(t *testing.T) {
	r := Normalize(nil, testNow)
	yesterday := testNow.AddDate(0, 0, -1)
	_, _ = AddEntry(r, 400, yesterday)
	_, _ = AddEntry(r, 200, testNow)
	ResetToday(r, testNow)
	if got := TodayTotal(r, testNow); got != 0 {
		t.Fatalf("expected empty today, got %v", got)
	}
	if got := TodayTotal(r, yesterday); got != 400 {
		t.Fatalf("reset must not touch other days, got %v", got)
	}
}

func TestHistoryTotals(t *testing.T) {
	r := Normalize(nil, testNow)
	_, _ = AddEntry(r, 500, testNow.AddDate(0, 0, -3))
	_, _ = AddEntry(r, 250, testNow.AddDate(0, 0, -3))
	_, _ = AddEntry(r, 100, testNow)

	hist := HistoryTotals(r, 14, testNow)
	if len(hist) != 14 {
		t.Fatalf("expected 14 days, got %d", len(hist))
	}
	if hist[0].Key != "2024-02-26" {
		t.Fatalf("expected oldest key 2024-02-26, got %s", hist[0].Key)
	}
	if hist[13].Key != testToday {
		t.Fatalf("expected history to end today, got %s", hist[13].Key)
	}
	for i := 1; i < len(hist); i++ {
		if hist[i-1].Key >= hist[i].Key {
			t.Fatalf("history not ordered oldest first at %d: %s >= %s", i, hist[i-1].Key, hist[i].Key)
		}
	}
	if hist[10].Total != 750 {
		t.Fatalf("expected 750 three days ago, got %v", hist[10].Total)
	}
	if hist[13].Total != 100 {
		t.Fatalf("expected 100 today, got %v", hist[13].Total)
	}
	if hist[0].Total != 0 {
		t.Fatalf("days without a bucket must total zero, got %v", hist[0].Total)
	}
	if got := HistoryTotals(r, 0, testNow); len(got) != 0 {
		t.Fatalf("expected empty history for n=0, got %d", len(got))
	}
}

func TestHistoryTotalsIsBounded(t *testing.T) {
	r := Normalize(nil, testNow)
	for _, n := range []int{MaxHistoryDays + 1, math.MaxInt} {
		hist := HistoryTotals(r, n, testNow)
		if len(hist) != MaxHistoryDays {
			t.Fatalf("HistoryTotals(%d) returned %d days, want %d", n, len(hist), MaxHistoryDays)
		}
		if hist[len(hist)-1].Key != testToday {
			t.Fatalf("capped history must still end today, got %s", hist[len(hist)-1].Key)
		}
	}
}

func TestAccountIsolation(t *testing.T) {
	r := Normalize(nil, testNow)
	a, _ := Current(r, testNow)
	b := CreateAccount(r, "Work", testNow)

	if !SetSelected(r, a, testNow) {
		t.Fatalf("select %s", a)
	}
	_, _ = AddEntry(r, 600, testNow)

	if !SetSelected(r, b, testNow) {
		t.Fatalf("select %s", b)
	}
	if got := TodayTotal(r, testNow); got != 0 {
		t.Fatalf("account B sees A's entries: %v", got)
	}
	for _, d := range HistoryTotals(r, 7, testNow) {
		if d.Total != 0 {
			t.Fatalf("account B history leaked %v on %s", d.Total, d.Key)
		}
	}
}

func TestCreateAccount(t *testing.T) {
	r := Normalize(nil, testNow)
	id := CreateAccount(r, "  Gym Bag  ", testNow)
	if !strings.HasPrefix(id, "gym-bag-") {
		t.Fatalf("unexpected id %q", id)
	}
	if r.Selected != id {
		t.Fatalf("new account not selected")
	}
	a := r.Accounts[id]
	if a.Name != "Gym Bag" || a.Data.GoalML != DefaultGoalML {
		t.Fatalf("unexpected account %+v", a)
	}
	if a.Data.Days[testToday] == nil {
		t.Fatalf("new account missing today bucket")
	}

	unnamed := CreateAccount(r, "", testNow)
	if r.Accounts[unnamed].Name != DefaultAccountName {
		t.Fatalf("expected default name, got %q", r.Accounts[unnamed].Name)
	}
}

func TestNewAccountIDRetriesOnCollision(t *testing.T) {
	calls := 0
	id := NewAccountID("Home", func(string) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if !strings.HasPrefix(id, "home-") || len(id) != len("home-")+8 {
		t.Fatalf("unexpected id %q", id)
	}
	if got := NewAccountID("!!!", nil); !strings.HasPrefix(got, "account-") {
		t.Fatalf("expected fallback prefix, got %q", got)
	}
}

func TestSetSelectedUnknownIsNoop(t *testing.T) {
	r := Normalize(nil, testNow)
	before := r.Selected
	if SetSelected(r, "missing", testNow) {
		t.Fatalf("unknown id must not be selectable")
	}
	if r.Selected != before {
		t.Fatalf("selection changed to %q", r.Selected)
	}
}

func TestSetSelectedCreatesTodayBucket(t *testing.T) {
	r := mustUnmarshal(t, `{"selected":"a","accounts":{"a":{"name":"A","data":{"goal_ml":2000,"days":{}}},"b":{"name":"B","data":{"goal_ml":2000,"days":{}}}}}`)
	if !SetSelected(r, "b", testNow) {
		t.Fatalf("select b")
	}
	if r.Accounts["b"].Data.Days[testToday] == nil {
		t.Fatalf("today bucket not created on select")
	}
}

func TestSetGoalClamps(t *testing.T) {
	r := Normalize(nil, testNow)
	cases := []struct {
		in   float64
		want int
	}{
		{in: 2499.6, want: 2500},
		{in: 0.4, want: 1},
		{in: -300, want: 1},
		{in: 1, want: 1},
	}
	for _, tc := range cases {
		got, err := SetGoal(r, tc.in, testNow)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tc.in, err)
		}
		if got != tc.want || Goal(r, testNow) != tc.want {
			t.Fatalf("%v: expected goal %d, got %d", tc.in, tc.want, got)
		}
	}
	if _, err := SetGoal(r, math.NaN(), testNow); !errors.Is(err, ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal, got %v", err)
	}
}

func TestOperationsSelfHealStaleSelection(t *testing.T) {
	r := mustUnmarshal(t, `{"selected":"gone","accounts":{"a":{"name":"A","data":{"goal_ml":1200,"days":{}}}}}`)
	if _, err := AddEntry(r, 100, testNow); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if r.Selected != "a" {
		t.Fatalf("expected fallback to existing account, got %q", r.Selected)
	}
	if got := TodayTotal(r, testNow); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}

	empty := &Root{Selected: "ghost"}
	if got := Goal(empty, testNow); got != DefaultGoalML {
		t.Fatalf("expected synthesized default goal, got %d", got)
	}
	if !Valid(empty, testNow) {
		t.Fatalf("self-heal left invariants broken")
	}
}

func TestInvariantsHoldAcrossOperationSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := Normalize(nil, testNow)
	now := testNow
	for step := 0; step < 500; step++ {
		switch rng.Intn(8) {
		case 0:
			CreateAccount(r, []string{"Home", "Work", "", "Run"}[rng.Intn(4)], now)
		case 1:
			ids := ListAccounts(r)
			SetSelected(r, ids[rng.Intn(len(ids))].ID, now)
		case 2:
			SetSelected(r, "unknown", now)
		case 3:
			_, _ = SetGoal(r, rng.Float64()*4000-500, now)
		case 4, 5:
			_, _ = AddEntry(r, float64(rng.Intn(600)), now)
		case 6:
			UndoLast(r, now)
		case 7:
			if rng.Intn(10) == 0 {
				ResetToday(r, now)
			} else {
				now = now.Add(7 * time.Hour)
				Normalize(r, now)
			}
		}
		if !Valid(r, now) {
			t.Fatalf("invariants broken after step %d: %+v", step, r)
		}
	}
}
