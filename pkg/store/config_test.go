package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/sip/pkg/timeutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SIP_CONFIG_PATH", t.TempDir())

	s, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, strings.HasPrefix(s.Path, "~"), "path should be expanded: %s", s.Path)
	assert.True(t, strings.HasSuffix(s.Path, ".sip"))
	assert.Equal(t, KindAuto, s.Backend())
	assert.Equal(t, 100*time.Millisecond, s.Debounce)
	assert.Equal(t, 14, s.HistoryDays)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	body := "path: " + data + "\nbackend: diskv\ndebounce: 250ms\nhistory_days: 7\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sip.yaml"), []byte(body), 0o600))
	t.Setenv("SIP_CONFIG_PATH", dir)

	s, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, data, s.BasePath())
	assert.Equal(t, KindDiskv, s.Backend())
	assert.Equal(t, 250*time.Millisecond, s.Debounce)
	assert.Equal(t, 7, s.HistoryDays)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("SIP_CONFIG_PATH", t.TempDir())
	t.Setenv("SIP_BACKEND", "memory")
	t.Setenv("SIP_HISTORY_DAYS", "-3")

	s, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, KindMemory, s.Backend())
	assert.Equal(t, 14, s.HistoryDays)
}

func TestLoadConfigCapsHistoryDays(t *testing.T) {
	t.Setenv("SIP_CONFIG_PATH", t.TempDir())
	t.Setenv("SIP_HISTORY_DAYS", "1125899906842624")

	s, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, timeutil.MaxWindowDays, s.HistoryDays)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SIP_CONFIG_PATH", t.TempDir())
	t.Setenv("SIP_BACKEND", "bolt")

	_, err := LoadConfig()
	assert.Error(t, err)
}
