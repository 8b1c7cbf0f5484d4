package state

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const suffixLen = 8

// NewAccountID derives an id from name plus a short random suffix, retrying
// until taken reports the id unused.
func NewAccountID(name string, taken func(string) bool) string {
	prefix := slug(name)
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
		id := prefix + "-" + suffix
		if taken == nil || !taken(id) {
			return id
		}
	}
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if len(s) > 24 {
		s = strings.TrimSuffix(s[:24], "-")
	}
	if s == "" {
		return "account"
	}
	return s
}
