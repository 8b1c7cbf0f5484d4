package entry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmount coerces user input into an amount. Surrounding whitespace and a
// trailing "ml" unit are accepted; empty input is zero.
func ParseAmount(v string) (float64, error) {
	s := strings.TrimSpace(strings.ToLower(v))
	s = strings.TrimSpace(strings.TrimSuffix(s, "ml"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", v)
	}
	return f, nil
}

// Finite reports whether ml can be stored. JSON has no encoding for NaN or
// infinities.
func Finite(ml float64) bool {
	return !math.IsNaN(ml) && !math.IsInf(ml, 0)
}

// FormatAmount renders ml without trailing zeros, e.g. 250 or 187.5.
func FormatAmount(ml float64) string {
	return strconv.FormatFloat(ml, 'f', -1, 64)
}
