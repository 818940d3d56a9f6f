// Package logger configures structured logging and carries load ids through contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Config represents logger configuration
type Config struct {
	Level     string // "debug", "info", "warn", "error"
	Format    string // "json", "text"
	AddSource bool
}

// LogLevel converts string level to slog.Level
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

// IsJSON returns true if format is JSON
func (c Config) IsJSON() bool {
	return strings.ToLower(c.Format) == "json"
}

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel(), AddSource: cfg.AddSource}
	var h slog.Handler
	if cfg.IsJSON() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", "emberfall"))
}

type ctxKey string

const loadIDKey ctxKey = "loadID"

// WithLoadID returns a context carrying a fresh load id, and the id.
func WithLoadID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, loadIDKey, id), id
}

// LoadIDFromContext extracts the load id from the context, if present.
func LoadIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(loadIDKey).(string)
	return id, ok
}

// FromContext returns base with the load_id attribute when ctx carries one.
// A nil base uses slog.Default().
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id, ok := LoadIDFromContext(ctx); ok {
		return base.With("load_id", id)
	}
	return base
}
