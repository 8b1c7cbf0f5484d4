package store

import (
	"context"
	"testing"
	"time"
)

func TestWatchEmitsDocumentChanges(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, nil)
	if err != nil {
		t.Fatalf("open disk: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, dir, nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := d.Put(ctx, sampleRoot()); err != nil {
		t.Fatalf("put: %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Type != EventDocumentChanged && evt.Type != EventRescan {
			t.Fatalf("unexpected event %v", evt.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := Watch(ctx, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// Drain a stray event; the close must follow.
			<-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchRequiresDirectory(t *testing.T) {
	if _, err := Watch(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 4)
	send := func(ev Event) { got <- ev }
	th.Enqueue(Event{Type: EventDocumentChanged}, send)
	th.Enqueue(Event{Type: EventDocumentChanged}, send)
	th.Enqueue(Event{Type: EventRescan}, send)

	select {
	case ev := <-got:
		if ev.Type != EventRescan {
			t.Fatalf("expected rescan to win, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("throttle never flushed")
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected second event %v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}
