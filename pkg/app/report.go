package app

import (
	"math"
	"time"

	"tableflip.dev/sip/pkg/state"
	"tableflip.dev/sip/pkg/timeutil"
)

// DefaultHistoryDays is the length of the history view.
const DefaultHistoryDays = 14

// History summarises the selected account over a window of days ending
// today.
type History struct {
	Account string           `json:"account"`
	GoalML  int              `json:"goal_ml"`
	Days    []state.DayTotal `json:"days"`
	// DaysMet counts days whose total reached the goal.
	DaysMet int     `json:"days_met"`
	Average float64 `json:"average_ml"`
	Best    float64 `json:"best_ml"`
}

// Status is the view of today for the selected account.
type Status struct {
	Date    string        `json:"date"`
	Account string        `json:"account"`
	GoalML  int           `json:"goal_ml"`
	TotalML float64       `json:"total_ml"`
	Entries []EntryReport `json:"entries"`
	// Percent is the share of the goal reached, capped at 100.
	Percent float64 `json:"percent"`
}

// EntryReport is an entry as shown to people.
type EntryReport struct {
	ML float64 `json:"ml"`
	TS string  `json:"ts"`
}

// History returns the last days totals for the selected account, oldest
// first. days <= 0 yields an empty window.
func (s *Service) History(days int) History {
	var h History
	s.read(func(r *state.Root, now time.Time) {
		_, a := state.Current(r, now)
		h = History{
			Account: a.Name,
			GoalML:  a.Data.GoalML,
			Days:    state.HistoryTotals(r, days, now),
		}
	})
	if len(h.Days) == 0 {
		return h
	}
	var sum float64
	for _, d := range h.Days {
		sum += d.Total
		if d.Total >= float64(h.GoalML) {
			h.DaysMet++
		}
		h.Best = math.Max(h.Best, d.Total)
	}
	h.Average = sum / float64(len(h.Days))
	return h
}

// Status describes today for the selected account.
func (s *Service) Status() Status {
	var st Status
	s.read(func(r *state.Root, now time.Time) {
		_, a := state.Current(r, now)
		st = Status{
			Date:    timeutil.DayKey(now),
			Account: a.Name,
			GoalML:  a.Data.GoalML,
			TotalML: state.TodayTotal(r, now),
		}
		for _, e := range state.TodayEntries(r, now) {
			st.Entries = append(st.Entries, EntryReport{ML: e.ML, TS: e.TS})
		}
	})
	if st.Entries == nil {
		st.Entries = []EntryReport{}
	}
	if st.GoalML > 0 {
		st.Percent = math.Min(100, math.Max(0, st.TotalML/float64(st.GoalML)*100))
	}
	return st
}
