package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SlogLogger implements Logger on top of log/slog and prints JSON lines.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger creates a JSON logger writing to stdout. component is optional
// and is attached to every entry.
func NewSlogLogger(component string, level string) *SlogLogger {
	return NewSlogLoggerTo(os.Stdout, component, level)
}

// NewSlogLoggerTo is NewSlogLogger with an explicit writer.
func NewSlogLoggerTo(w io.Writer, component string, level string) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	l := slog.New(h)
	if component != "" {
		l = l.With("component", component)
	}
	return &SlogLogger{l: l}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is treated as info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func toArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

func (s *SlogLogger) Debug(msg string, fields ...Field) {
	s.l.Debug(msg, toArgs(fields)...)
}

func (s *SlogLogger) Info(msg string, fields ...Field) {
	s.l.Info(msg, toArgs(fields)...)
}

func (s *SlogLogger) Warn(msg string, fields ...Field) {
	s.l.Warn(msg, toArgs(fields)...)
}

func (s *SlogLogger) Error(msg string, fields ...Field) {
	s.l.Error(msg, toArgs(fields)...)
}

// With returns a child logger with persistent fields.
func (s *SlogLogger) With(fields ...Field) Logger {
	return &SlogLogger{l: s.l.With(toArgs(fields)...)}
}
