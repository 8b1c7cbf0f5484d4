// Package entry holds the intake entry value and the per-day bucket that
// collects entries in append order.
package entry

import (
	"time"

	"tableflip.dev/sip/pkg/timeutil"
)

// Entry is a single logged intake. Once appended to a bucket it is never
// modified.
type Entry struct {
	ML float64 `json:"ml" yaml:"ml"`
	TS string  `json:"ts" yaml:"ts"`
}

// New creates an entry stamped with the HH:MM label of at.
func New(ml float64, at time.Time) Entry {
	return Entry{ML: ml, TS: timeutil.TimeLabel(at)}
}

// Bucket is the ordered list of entries for one account on one day. Order is
// insertion order; the ts label is display only.
type Bucket struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// NewBucket returns an empty bucket whose entries encode as [] rather than null.
func NewBucket() *Bucket {
	return &Bucket{Entries: []Entry{}}
}

// Append adds e as the most recent entry.
func (b *Bucket) Append(e Entry) {
	b.Entries = append(b.Entries, e)
}

// Pop removes and returns the most recent entry.
func (b *Bucket) Pop() (Entry, bool) {
	if b == nil || len(b.Entries) == 0 {
		return Entry{}, false
	}
	last := b.Entries[len(b.Entries)-1]
	b.Entries = b.Entries[:len(b.Entries)-1]
	return last, true
}

// Total sums the amounts in the bucket. A nil bucket totals zero.
func (b *Bucket) Total() float64 {
	if b == nil {
		return 0
	}
	total := 0.0
	for _, e := range b.Entries {
		total += e.ML
	}
	return total
}

// Len reports the number of entries.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Entries)
}

// Clone returns a deep copy.
func (b *Bucket) Clone() *Bucket {
	if b == nil {
		return nil
	}
	cp := &Bucket{Entries: make([]Entry, len(b.Entries))}
	copy(cp.Entries, b.Entries)
	return cp
}

// Newest returns the entries most recent first.
func (b *Bucket) Newest() []Entry {
	out := make([]Entry, 0, b.Len())
	if b == nil {
		return out
	}
	for i := len(b.Entries) - 1; i >= 0; i-- {
		out = append(out, b.Entries[i])
	}
	return out
}
