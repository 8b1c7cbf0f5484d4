package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Backend kinds accepted by the "backend" setting.
const (
	KindAuto   = "auto"
	KindSQLite = "sqlite"
	KindDiskv  = "diskv"
	KindMemory = "memory"
)

// DiskDir is the diskv directory inside the data directory.
const DiskDir = "kv"

// ParseKind validates a backend setting.
func ParseKind(raw string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(raw)); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindSQLite, KindDiskv, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("store: unknown backend %q (want auto, sqlite, diskv or memory)", raw)
	}
}

// Open probes the storage capabilities once. It never fails: each backend
// that cannot be used is logged and the next one tried, ending at memory.
func Open(ctx context.Context, cfg Config, log logrus.FieldLogger) *Backends {
	log = quiet(log)
	kind, err := ParseKind(cfg.Backend())
	if err != nil {
		log.WithError(err).Warn("falling back to automatic backend selection")
		kind = KindAuto
	}
	if kind == KindMemory {
		return &Backends{Primary: NewMemory()}
	}

	base := cfg.BasePath()
	if err := os.MkdirAll(base, 0o700); err != nil {
		log.WithError(err).WithField("path", base).Warn("data directory unavailable, keeping state in memory")
		return &Backends{Primary: NewMemory()}
	}

	disk, err := NewDisk(filepath.Join(base, DiskDir), log)
	if err != nil {
		log.WithError(err).Warn("diskv store unavailable")
		disk = nil
	}

	if kind != KindDiskv {
		db, err := OpenSQLite(ctx, filepath.Join(base, SQLiteFile))
		if err == nil {
			b := &Backends{Primary: db, Dir: base}
			if disk != nil {
				b.Fallback = disk
				b.Legacy = disk
			}
			log.WithField("path", db.Path()).Debug("using sqlite store")
			return b
		}
		log.WithError(err).Warn("sqlite store unavailable")
	}

	if disk != nil {
		log.WithField("path", disk.Dir()).Debug("using diskv store")
		return &Backends{Primary: disk, Legacy: disk, Dir: base}
	}

	log.Warn("no persistent store available, changes will be lost on exit")
	return &Backends{Primary: NewMemory()}
}
