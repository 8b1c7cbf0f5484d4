package printers

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/sip/pkg/app"
	"tableflip.dev/sip/pkg/entry"
	"tableflip.dev/sip/pkg/state"
)

const barWidth = 20

// PrettyPrint renders state for people. A nil Out writes to color.Output.
type PrettyPrint struct {
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// Status prints today's progress and entries.
func (pp *PrettyPrint) Status(st app.Status) {
	pp.Title(fmt.Sprintf("%s · %s", st.Account, st.Date))

	c := progressColor(st.Percent)
	_, _ = fmt.Fprintf(pp.out(), "%s %s / %d ml ",
		Bar(st.Percent, barWidth), c.Sprint(entry.FormatAmount(st.TotalML)), st.GoalML)
	_, _ = color.New(color.Faint).Fprintf(pp.out(), "(%.0f%%)\n", st.Percent)
	pp.NewLine()

	entries := make([]entry.Entry, 0, len(st.Entries))
	for _, e := range st.Entries {
		entries = append(entries, entry.Entry{ML: e.ML, TS: e.TS})
	}
	pp.Entries(entries...)
}

// Entries lists entries, oldest first.
func (pp *PrettyPrint) Entries(entries ...entry.Entry) {
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " nothing yet\n\n")
		return
	}
	y := color.New(color.FgHiYellow, color.Faint)
	for _, e := range entries {
		_, _ = y.Fprint(pp.out(), e.TS)
		_, _ = fmt.Fprintf(pp.out(), "  %s ml\n", entry.FormatAmount(e.ML))
	}
	pp.NewLine()
}

// Added confirms a new entry and shows the running total.
func (pp *PrettyPrint) Added(e entry.Entry, total float64, goal int) {
	g := color.New(color.FgGreen)
	_, _ = g.Fprintf(pp.out(), "+%s ml", entry.FormatAmount(e.ML))
	_, _ = fmt.Fprintf(pp.out(), " at %s, %s / %d ml today\n", e.TS, entry.FormatAmount(total), goal)
}

// History prints one row per day with a bar against the goal.
func (pp *PrettyPrint) History(h app.History) {
	pp.Title(fmt.Sprintf("%s · last %d days", h.Account, len(h.Days)))
	if len(h.Days) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(pp.out(), " no days\n\n")
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Total"), "", "")
	for _, d := range h.Days {
		pct := 0.0
		if h.GoalML > 0 {
			pct = d.Total / float64(h.GoalML) * 100
		}
		mark := ""
		if d.Total >= float64(h.GoalML) {
			mark = color.GreenString("✓")
		}
		tbl.AddRow(d.Key, entry.FormatAmount(d.Total)+" ml", Bar(pct, barWidth), mark)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()

	f := color.New(color.Faint)
	_, _ = f.Fprintf(pp.out(), "goal %d ml · met %d of %d days · average %s ml · best %s ml\n",
		h.GoalML, h.DaysMet, len(h.Days), entry.FormatAmount(round1(h.Average)), entry.FormatAmount(h.Best))
}

// Accounts prints the account list, marking the selected one.
func (pp *PrettyPrint) Accounts(accts []state.AccountSummary) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("ID"), bold.Sprint("Name"), bold.Sprint("Goal"))
	for _, a := range accts {
		sel := " "
		if a.Selected {
			sel = color.CyanString("*")
		}
		tbl.AddRow(sel, a.ID, a.Name, fmt.Sprintf("%d ml", a.GoalML))
	}
	tbl.RightAlign(3)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Bar renders pct (0-100, clamped) as a fixed-width bar.
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 || math.IsNaN(pct) {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}

func progressColor(pct float64) *color.Color {
	switch {
	case pct >= 100:
		return color.New(color.FgGreen, color.Bold)
	case pct >= 50:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgYellow)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
