package state

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/timeutil"
)

// Normalize fills in missing structure so the document invariants hold:
//
//   - accounts is never empty (a "Personal" account is synthesized);
//   - selected names an existing account;
//   - every account has a name, a goal >= 1 and a bucket for today.
//
// Missing substructure is created, never reported as an error. The root is
// modified in place and returned; a nil root yields a fresh default. Calling
// Normalize twice with the same now is the same as calling it once.
func Normalize(r *Root, now time.Time) *Root {
	if r == nil {
		r = &Root{}
	}
	if r.Accounts == nil {
		r.Accounts = make(map[string]*Account)
	}
	today := timeutil.DayKey(now)

	if a, ok := r.Accounts[""]; ok {
		delete(r.Accounts, "")
		id := NewAccountID(nameOf(a), r.has)
		r.Accounts[id] = a
		if r.Selected == "" {
			r.Selected = id
		}
	}

	for id, a := range r.Accounts {
		if a == nil {
			a = &Account{}
			r.Accounts[id] = a
		}
		normalizeAccount(a, today)
	}

	if len(r.Accounts) == 0 {
		id := NewAccountID(DefaultAccountName, r.has)
		r.Accounts[id] = newAccount(DefaultAccountName, today)
		r.Selected = id
	}

	if !r.has(r.Selected) {
		r.Selected = r.firstID()
	}
	return r
}

func normalizeAccount(a *Account, today string) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		a.Name = DefaultAccountName
	}
	if a.Data == nil {
		a.Data = NewDailyLog()
	}
	if a.Data.GoalML <= 0 {
		a.Data.GoalML = DefaultGoalML
	}
	if a.Data.Days == nil {
		a.Data.Days = make(map[string]*entry.Bucket)
	}
	for key, b := range a.Data.Days {
		if b == nil {
			a.Data.Days[key] = entry.NewBucket()
		} else if b.Entries == nil {
			b.Entries = []entry.Entry{}
		}
	}
	a.Data.EnsureBucket(today)
}

func newAccount(name, today string) *Account {
	a := &Account{Name: name, Data: NewDailyLog()}
	a.Data.EnsureBucket(today)
	return a
}

func nameOf(a *Account) string {
	if a == nil {
		return DefaultAccountName
	}
	return a.Name
}

func (r *Root) has(id string) bool {
	if id == "" {
		return false
	}
	_, ok := r.Accounts[id]
	return ok
}

// firstID picks the lexicographically first id so repair is deterministic.
func (r *Root) firstID() string {
	ids := make([]string, 0, len(r.Accounts))
	for id := range r.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Valid reports whether r satisfies the invariants for the day of now. It does
// not modify r.
func Valid(r *Root, now time.Time) bool {
	if r == nil || len(r.Accounts) == 0 || !r.has(r.Selected) {
		return false
	}
	today := timeutil.DayKey(now)
	for id, a := range r.Accounts {
		if id == "" || a == nil || a.Name == "" || a.Data == nil {
			return false
		}
		if a.Data.GoalML < 1 || a.Data.Days == nil {
			return false
		}
		if a.Data.Days[today] == nil {
			return false
		}
	}
	return true
}
