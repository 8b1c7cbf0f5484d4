package timeutil

import "time"

const (
	// LayoutDayKey is the canonical calendar-day key format.
	LayoutDayKey = "2006-01-02"
	// LayoutTimeLabel is the display-only time of day recorded on entries.
	LayoutTimeLabel = "15:04"
)

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local system clock.
type SystemClock struct{}

// Now returns time.Now in the local location.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. Set T to move it.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.T
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

// DayKey renders t as a YYYY-MM-DD key in t's own location.
func DayKey(t time.Time) string {
	return t.Format(LayoutDayKey)
}

// TodayKey reads c and returns the key for the current day. It is never
// cached so callers observe day rollover.
func TodayKey(c Clock) string {
	return DayKey(c.Now())
}

// KeyForOffset returns the key for the calendar day daysAgo days before t.
func KeyForOffset(t time.Time, daysAgo int) string {
	return DayKey(t.AddDate(0, 0, -daysAgo))
}

// TimeLabel renders the HH:MM label stored on entries.
func TimeLabel(t time.Time) string {
	return t.Format(LayoutTimeLabel)
}

// ParseDayKey parses a YYYY-MM-DD key in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(LayoutDayKey, key, loc)
}
