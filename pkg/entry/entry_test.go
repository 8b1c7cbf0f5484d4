package entry

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestNewStampsTimeLabel(t *testing.T) {
	at := time.Date(2024, time.May, 4, 7, 5, 30, 0, time.UTC)
	e := New(250, at)
	if e.ML != 250 {
		t.Fatalf("expected 250 ml, got %v", e.ML)
	}
	if e.TS != "07:05" {
		t.Fatalf("expected ts 07:05, got %q", e.TS)
	}
}

func TestBucketAppendPopTotal(t *testing.T) {
	b := NewBucket()
	b.Append(Entry{ML: 300, TS: "08:00"})
	b.Append(Entry{ML: 150, TS: "08:30"})
	if got := b.Total(); got != 450 {
		t.Fatalf("expected total 450, got %v", got)
	}

	last, ok := b.Pop()
	if !ok {
		t.Fatalf("expected an entry to pop")
	}
	if last.ML != 150 {
		t.Fatalf("expected most recent entry 150, got %v", last.ML)
	}
	if got := b.Total(); got != 300 {
		t.Fatalf("expected total 300 after pop, got %v", got)
	}

	b.Pop()
	if _, ok := b.Pop(); ok {
		t.Fatalf("expected empty bucket to report nothing to pop")
	}
}

func TestNilBucket(t *testing.T) {
	var b *Bucket
	if b.Total() != 0 || b.Len() != 0 {
		t.Fatalf("nil bucket should be empty")
	}
	if _, ok := b.Pop(); ok {
		t.Fatalf("nil bucket should not pop")
	}
	if b.Clone() != nil {
		t.Fatalf("clone of nil bucket should be nil")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBucket()
	b.Append(Entry{ML: 100, TS: "09:00"})
	cp := b.Clone()
	cp.Append(Entry{ML: 200, TS: "09:10"})
	if b.Len() != 1 {
		t.Fatalf("mutating clone changed original: %d entries", b.Len())
	}
}

func TestNewestOrder(t *testing.T) {
	b := NewBucket()
	b.Append(Entry{ML: 1, TS: "08:00"})
	b.Append(Entry{ML: 2, TS: "09:00"})
	b.Append(Entry{ML: 3, TS: "10:00"})
	got := b.Newest()
	if len(got) != 3 || got[0].ML != 3 || got[2].ML != 1 {
		t.Fatalf("unexpected newest order: %+v", got)
	}
}

func TestEmptyBucketEncodesAsArray(t *testing.T) {
	b, err := json.Marshal(NewBucket())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"entries":[]}` {
		t.Fatalf("unexpected encoding: %s", b)
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"250":     250,
		" 187.5 ": 187.5,
		"330ml":   330,
		"500 ML":  500,
		"":        0,
		"-20":     -20,
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}
	if _, err := ParseAmount("a glass"); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
}

func TestFiniteAndFormat(t *testing.T) {
	if Finite(math.NaN()) || Finite(math.Inf(1)) {
		t.Fatalf("non-finite values must be rejected")
	}
	if !Finite(-5) {
		t.Fatalf("negative finite values are storable")
	}
	if got := FormatAmount(187.5); got != "187.5" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatAmount(2000); got != "2000" {
		t.Fatalf("unexpected format: %s", got)
	}
}
