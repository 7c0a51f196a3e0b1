// Package config loads the demdump settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the demdump settings.
type Config struct {
	Debug     bool   `env:"DEMDUMP_DEBUG"`
	LogFormat string `env:"DEMDUMP_LOG_FORMAT" envDefault:"text"`
	// Packets adds a per-kind packet count to the dump.
	Packets bool `env:"DEMDUMP_PACKETS"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.LogFormat {
	case FormatText, FormatJSON:
	default:
		return Config{}, fmt.Errorf("parse env: DEMDUMP_LOG_FORMAT %q: want %q or %q", cfg.LogFormat, FormatText, FormatJSON)
	}
	return cfg, nil
}

// Logger returns a logger writing to w in the configured format, at debug
// level when Debug is set.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
