package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultWindow is the history window used when none is provided.
	DefaultWindow = "2w"
	// MaxWindowDays bounds any history window, about ten years.
	MaxWindowDays = 3660
)

// windowUnits maps a unit token to its length in days. A bare number counts
// days.
var windowUnits = map[string]int{
	"":      1,
	"d":     1,
	"day":   1,
	"days":  1,
	"w":     7,
	"wk":    7,
	"wks":   7,
	"week":  7,
	"weeks": 7,
}

var errEmptyWindow = errors.New("window must cover at least one day")

// ParseWindow reads a history window such as "10", "3d", "2w" or "1w3d" and
// returns the number of calendar days it covers, today included. Empty input
// is DefaultWindow.
func ParseWindow(input string) (int, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		rest = DefaultWindow
	}
	total := 0
	for rest != "" {
		digits := strings.IndexFunc(rest, notDigit)
		if digits == 0 {
			return 0, fmt.Errorf("window %q: expected a number at %q", input, rest)
		}
		if digits < 0 {
			digits = len(rest)
		}
		n, err := strconv.Atoi(rest[:digits])
		if err != nil || n > MaxWindowDays {
			return 0, fmt.Errorf("window %q is longer than %d days", input, MaxWindowDays)
		}
		rest = strings.TrimLeft(rest[digits:], " ")

		letters := strings.IndexFunc(rest, notLetter)
		if letters < 0 {
			letters = len(rest)
		}
		per, ok := windowUnits[rest[:letters]]
		if !ok {
			return 0, fmt.Errorf("window %q: unknown unit %q, use d or w", input, rest[:letters])
		}
		total += n * per
		if total > MaxWindowDays {
			return 0, fmt.Errorf("window %q is longer than %d days", input, MaxWindowDays)
		}
		rest = strings.TrimLeft(rest[letters:], " ")
	}
	if total == 0 {
		return 0, errEmptyWindow
	}
	return total, nil
}

func notDigit(r rune) bool  { return r < '0' || r > '9' }
func notLetter(r rune) bool { return r < 'a' || r > 'z' }
