package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
	"github.com/sirupsen/logrus"

	"tableflip.dev/sip/pkg/state"
)

const (
	// RootKey holds the current-format root document.
	RootKey = "root"
	// LegacyKey holds the single-account document written by the first
	// version of the tracker.
	LegacyKey = "waterTracker"

	probeKey      = ".probe"
	corruptSuffix = ".corrupt"
)

// Disk keeps each document as one JSON file under a directory.
type Disk struct {
	d   *diskv.Diskv
	dir string
	log logrus.FieldLogger
}

// NewDisk opens a file store in dir and verifies that it can write there.
func NewDisk(dir string, log logrus.FieldLogger) (*Disk, error) {
	if dir == "" {
		return nil, errors.New("store: disk directory unknown")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure disk directory: %w", err)
	}
	d := &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: flatKey,
			InverseTransform:  flatKeyName,
			TempDir:           filepath.Join(dir, ".tmp"),
			// Other processes may rewrite the files; never serve stale reads.
			CacheSizeMax: 0,
			FilePerm:     0o600,
			PathPerm:     0o700,
		}),
		dir: dir,
		log: quiet(log),
	}
	if err := d.d.Write(probeKey, []byte("ok")); err != nil {
		return nil, fmt.Errorf("store: disk probe write: %w", err)
	}
	if err := d.d.Erase(probeKey); err != nil {
		return nil, fmt.Errorf("store: disk probe erase: %w", err)
	}
	return d, nil
}

// Name implements Backend.
func (d *Disk) Name() string { return "diskv" }

// Dir returns the directory holding the files.
func (d *Disk) Dir() string { return d.dir }

// Get implements Backend.
func (d *Disk) Get(_ context.Context) (*state.Root, error) {
	data, err := d.read(RootKey)
	if err != nil {
		return nil, err
	}
	r, err := decodeRoot(data)
	if err != nil {
		d.quarantine(RootKey, data, err)
		return nil, err
	}
	return r, nil
}

// Put implements Backend.
func (d *Disk) Put(_ context.Context, doc *state.Root) error {
	data, err := state.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode root: %w", err)
	}
	if err := d.d.Write(RootKey, data); err != nil {
		return fmt.Errorf("store: write root: %w", err)
	}
	return nil
}

// GetLegacy implements LegacySource.
func (d *Disk) GetLegacy(_ context.Context) (*state.DailyLog, error) {
	data, err := d.read(LegacyKey)
	if err != nil {
		return nil, err
	}
	l, err := decodeLegacy(data)
	if err != nil {
		d.quarantine(LegacyKey, data, err)
		return nil, err
	}
	return l, nil
}

// Close implements Backend.
func (d *Disk) Close() error { return nil }

func (d *Disk) read(key string) ([]byte, error) {
	if !d.d.Has(key) {
		return nil, ErrNotFound
	}
	data, err := d.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	if len(data) == 0 {
		d.quarantine(key, data, ErrCorrupt)
		return nil, fmt.Errorf("%w: %s is empty", ErrCorrupt, key)
	}
	return data, nil
}

// quarantine moves unreadable bytes aside so the next start does not trip on
// them again, keeping a copy for manual recovery.
func (d *Disk) quarantine(key string, data []byte, cause error) {
	backup := key + corruptSuffix
	log := d.log.WithField("key", key).WithError(cause)
	if err := d.d.Write(backup, data); err != nil {
		log.WithField("backup", backup).Warnf("could not back up corrupt document: %v", err)
		return
	}
	if err := d.d.Erase(key); err != nil {
		log.Warnf("could not remove corrupt document: %v", err)
		return
	}
	log.WithField("backup", filepath.Join(d.dir, backup)).Warn("corrupt document moved aside")
}

// flatKey stores every key as a file directly under the base directory.
func flatKey(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatKeyName(pk *diskv.PathKey) string {
	return pk.FileName
}
