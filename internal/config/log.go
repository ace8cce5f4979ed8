package config

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLogLevel  = "TRANSFLOW_LOG_LEVEL"
	EnvLogFormat = "TRANSFLOW_LOG_FORMAT"
)

// LogConfig selects the slog handler: level is debug, info, warn or error;
// format is text or json.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func (c *LogConfig) Finalize() error {
	c.Level = strings.ToLower(cmp.Or(os.Getenv(EnvLogLevel), c.Level, "info"))
	c.Format = strings.ToLower(cmp.Or(os.Getenv(EnvLogFormat), c.Format, "text"))

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

func (c *LogConfig) Merge(overlay *LogConfig) {
	c.Level = cmp.Or(overlay.Level, c.Level)
	c.Format = cmp.Or(overlay.Format, c.Format)
}

// NewLogger builds the process logger writing to w.
func (c *LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	lvl.UnmarshalText([]byte(c.Level))

	opts := &slog.HandlerOptions{Level: lvl}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
