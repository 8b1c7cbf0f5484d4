package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/sip/pkg/timeutil"
)

// Config tells Open where and how to persist.
type Config interface {
	BasePath() string
	Backend() string
}

// Settings is everything read from .sip and SIP_* variables.
type Settings struct {
	Path        string        `json:"path" yaml:"path"`
	Store       string        `json:"backend" yaml:"backend"`
	Debounce    time.Duration `json:"debounce" yaml:"debounce"`
	HistoryDays int           `json:"history_days" yaml:"history_days"`
	LogLevel    string        `json:"log_level" yaml:"log_level"`
}

// BasePath implements Config.
func (s *Settings) BasePath() string { return s.Path }

// Backend implements Config.
func (s *Settings) Backend() string { return s.Store }

// LoadConfig reads .sip from $SIP_CONFIG_PATH or the working directory,
// overlaid with SIP_* environment variables.
func LoadConfig() (*Settings, error) {
	v := viper.New()
	v.SetDefault("path", "~/.sip")
	v.SetDefault("backend", KindAuto)
	v.SetDefault("debounce", "100ms")
	v.SetDefault("history_days", 14)
	v.SetDefault("log_level", "warn")
	v.SetConfigName(".sip") // .yaml is implicit
	v.SetEnvPrefix("SIP")
	v.AutomaticEnv()

	if override := os.Getenv("SIP_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	kind, err := ParseKind(v.GetString("backend"))
	if err != nil {
		return nil, err
	}
	s := &Settings{
		Path:        path,
		Store:       kind,
		Debounce:    v.GetDuration("debounce"),
		HistoryDays: v.GetInt("history_days"),
		LogLevel:    v.GetString("log_level"),
	}
	if s.Debounce < 0 {
		s.Debounce = 0
	}
	if s.HistoryDays <= 0 {
		s.HistoryDays = 14
	}
	if s.HistoryDays > timeutil.MaxWindowDays {
		s.HistoryDays = timeutil.MaxWindowDays
	}
	return s, nil
}
