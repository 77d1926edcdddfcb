// Package logging sets up structured logging with slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents a logging level
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config holds the logging configuration
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	Component string
}

// DefaultConfig returns text logs at info level on stderr
func DefaultConfig() Config {
	return Config{
		Level:     LevelInfo,
		Format:    FormatText,
		Output:    os.Stderr,
		Component: "vocabmaster",
	}
}

// New creates a logger for cfg
func New(cfg Config) *slog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if shouldRedact(a.Key) {
				a.Value = slog.StringValue("[REDACTED]")
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	if cfg.Component != "" {
		handler = &componentHandler{Handler: handler, name: cfg.Component}
	}
	return slog.New(handler)
}

// componentHandler adds the component attribute to every record.
// Component swaps the name, so each record carries the key once.
type componentHandler struct {
	slog.Handler
	name string
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(slog.String("component", h.name))
	return h.Handler.Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &componentHandler{Handler: h.Handler.WithAttrs(attrs), name: h.name}
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{Handler: h.Handler.WithGroup(name), name: h.name}
}

// Component derives a logger tagged with another component name
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	if ch, ok := l.Handler().(*componentHandler); ok {
		return slog.New(&componentHandler{Handler: ch.Handler, name: name})
	}
	return l.With(slog.String("component", name))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError + 1}))
}

func shouldRedact(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "credential", "private_key"} {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}

// ParseLevel parses a string into a log level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// ParseFormat parses "text" or "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", s)
	}
}
