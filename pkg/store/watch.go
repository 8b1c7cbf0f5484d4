package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// EventType describes what a change notification means to a reader.
type EventType int

const (
	// EventDocumentChanged reports a write to a stored document.
	EventDocumentChanged EventType = iota

	// EventRescan reports that the watcher lost track of changes (an
	// fsnotify error) and readers should reload unconditionally.
	EventRescan
)

// Event is emitted by Watch when files under the data directory change.
type Event struct {
	Type EventType
}

// watchDelay is how long Watch waits for a burst of writes to settle.
var watchDelay = 100 * time.Millisecond

// Watch streams change events for dir until ctx is cancelled. Events are
// dropped when the reader is slow; a later event always follows a later
// write. The channel closes when ctx is done or the watcher fails.
func Watch(ctx context.Context, dir string, log logrus.FieldLogger) (<-chan Event, error) {
	if dir == "" {
		return nil, errors.New("store: nothing on disk to watch")
	}
	log = quiet(log)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				log.WithError(err).Debug("watcher close")
			}
		})
	}

	dirs, err := collectDirs(dir)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", d, err)
		}
	}

	events := make(chan Event, 8)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, d := range dirs {
			watched[d] = struct{}{}
		}

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(watchDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Debug("watcher error")
				throttle.Enqueue(Event{Type: EventRescan}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						d := filepath.Clean(evt.Name)
						if _, found := watched[d]; !found {
							if err := watcher.Add(d); err != nil {
								log.WithError(err).WithField("dir", d).Debug("watch new directory")
							} else {
								watched[d] = struct{}{}
							}
						}
						continue
					}
				}
				if ignored(evt.Name) {
					continue
				}
				throttle.Enqueue(Event{Type: EventDocumentChanged}, send)
			}
		}
	}()

	return events, nil
}

// ignored filters out probe files and quarantined copies; neither changes
// what a reader would load.
func ignored(path string) bool {
	name := filepath.Base(path)
	return name == probeKey || strings.HasSuffix(name, corruptSuffix)
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventThrottle folds a burst of notifications into one event per type.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[ev.Type] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]struct{})
	t.timer = nil
	t.mu.Unlock()

	// A rescan subsumes a plain change.
	if _, ok := pending[EventRescan]; ok {
		send(Event{Type: EventRescan})
		return
	}
	if _, ok := pending[EventDocumentChanged]; ok {
		send(Event{Type: EventDocumentChanged})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
