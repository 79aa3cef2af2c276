package app

import (
	"fmt"
	"log/slog"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath is the project file to load.
	ConfigPath string

	LogFormat string
	LogLevel  string
	Quiet     bool
}

// NewConfig validates and normalizes CLI-provided settings.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = "dockhand.yml"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	return &cfg, nil
}

// Level maps the validated LogLevel to its slog level. Quiet wins over
// the configured level so only errors get through.
func (c *Config) Level() slog.Level {
	if c.Quiet {
		return slog.LevelError
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
