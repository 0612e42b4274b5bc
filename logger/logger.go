// Package logger builds the structured logger shared by the engine and
// the front ends.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config represents logger configuration.
type Config struct {
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json", "text"
	File    string // log file path; empty discards output
	Game    string // game title added to every record
	Version string
}

// LogLevel converts the string level to a slog.Level.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON reports whether the JSON handler is selected.
func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, "json")
}

// New returns a logger writing to w with the configured handler.
func New(c Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	var h slog.Handler
	if c.IsJSON() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	if c.Game != "" {
		l = l.With("game", c.Game)
	}
	if c.Version != "" {
		l = l.With("version", c.Version)
	}
	return l
}

// Open creates the logger for c.File. Terminal front ends own stdout, so
// without a file the logger discards everything. The returned close
// function is always safe to call.
func Open(c Config) (*slog.Logger, func() error, error) {
	if c.File == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	if dir := filepath.Dir(c.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(c, f), f.Close, nil
}
