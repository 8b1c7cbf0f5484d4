package state

import (
	"errors"
	"sort"
	"strings"
	"time"

	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/timeutil"
)

var (
	// ErrNonFiniteAmount rejects NaN and infinite amounts, which have no
	// persisted encoding. Non-positive amounts are left to the caller.
	ErrNonFiniteAmount = errors.New("state: amount must be a finite number")
	// ErrInvalidGoal rejects NaN and infinite goals.
	ErrInvalidGoal = errors.New("state: goal must be a finite number")
)

// AccountSummary is the listing view of one account.
type AccountSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	GoalML   int    `json:"goal_ml"`
	Selected bool   `json:"selected"`
}

// DayTotal is the summed intake for one day key.
type DayTotal struct {
	Key   string  `json:"date"`
	Total float64 `json:"total_ml"`
}

// Current resolves the selected account. Resolution never fails: a missing
// or stale selection is repaired by normalizing, which falls back to the
// first account or synthesizes a default one. This self-healing is
// intentional so a partially written document stays usable.
func Current(r *Root, now time.Time) (string, *Account) {
	if a, ok := r.Accounts[r.Selected]; !ok || a == nil || a.Data == nil {
		Normalize(r, now)
	}
	a := r.Accounts[r.Selected]
	if a.Data.GoalML <= 0 {
		a.Data.GoalML = DefaultGoalML
	}
	return r.Selected, a
}

func todayBucket(r *Root, now time.Time) *entry.Bucket {
	_, a := Current(r, now)
	return a.Data.EnsureBucket(timeutil.DayKey(now))
}

// ListAccounts returns every account ordered by name, then id.
func ListAccounts(r *Root) []AccountSummary {
	out := make([]AccountSummary, 0, len(r.Accounts))
	for id, a := range r.Accounts {
		if a == nil {
			continue
		}
		s := AccountSummary{ID: id, Name: a.Name, Selected: id == r.Selected}
		if a.Data != nil {
			s.GoalML = a.Data.GoalML
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CreateAccount adds an account with an empty log, selects it and returns
// its id. An empty name falls back to the default account name.
func CreateAccount(r *Root, name string, now time.Time) string {
	Normalize(r, now)
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultAccountName
	}
	id := NewAccountID(name, r.has)
	r.Accounts[id] = newAccount(name, timeutil.DayKey(now))
	r.Selected = id
	return id
}

// SetSelected switches to id. Unknown ids are ignored and reported false.
func SetSelected(r *Root, id string, now time.Time) bool {
	a, ok := r.Accounts[id]
	if !ok || id == "" {
		return false
	}
	if a == nil {
		a = &Account{}
		r.Accounts[id] = a
	}
	r.Selected = id
	normalizeAccount(a, timeutil.DayKey(now))
	return true
}

// Goal returns the selected account's goal.
func Goal(r *Root, now time.Time) int {
	_, a := Current(r, now)
	return a.Data.GoalML
}

// SetGoal rounds g to an integer no lower than 1 and stores it on the
// selected account.
func SetGoal(r *Root, g float64, now time.Time) (int, error) {
	if !entry.Finite(g) {
		return 0, ErrInvalidGoal
	}
	goal := roundGoal(g)
	if goal < 1 {
		goal = 1
	}
	_, a := Current(r, now)
	a.Data.GoalML = goal
	return goal, nil
}

// AddEntry appends ml to today's bucket of the selected account.
func AddEntry(r *Root, ml float64, now time.Time) (entry.Entry, error) {
	if !entry.Finite(ml) {
		return entry.Entry{}, ErrNonFiniteAmount
	}
	e := entry.New(ml, now)
	todayBucket(r, now).Append(e)
	return e, nil
}

// UndoLast removes the most recent entry of today and returns its amount.
// An empty day yields (0, false).
func UndoLast(r *Root, now time.Time) (float64, bool) {
	e, ok := todayBucket(r, now).Pop()
	if !ok {
		return 0, false
	}
	return e.ML, true
}

// ResetToday empties today's bucket of the selected account.
func ResetToday(r *Root, now time.Time) {
	_, a := Current(r, now)
	a.Data.Days[timeutil.DayKey(now)] = entry.NewBucket()
}

// TodayTotal sums today's entries for the selected account.
func TodayTotal(r *Root, now time.Time) float64 {
	return todayBucket(r, now).Total()
}

// TodayEntries returns a copy of today's entries in insertion order.
func TodayEntries(r *Root, now time.Time) []entry.Entry {
	return todayBucket(r, now).Clone().Entries
}

// MaxHistoryDays bounds a history window. Longer requests are truncated.
const MaxHistoryDays = timeutil.MaxWindowDays

// HistoryTotals returns totals for the n days ending today, oldest first.
// Days without a bucket total zero. n is capped at MaxHistoryDays.
func HistoryTotals(r *Root, n int, now time.Time) []DayTotal {
	if n <= 0 {
		return []DayTotal{}
	}
	if n > MaxHistoryDays {
		n = MaxHistoryDays
	}
	_, a := Current(r, now)
	out := make([]DayTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := timeutil.KeyForOffset(now, i)
		out = append(out, DayTotal{Key: key, Total: a.Data.Bucket(key).Total()})
	}
	return out
}
