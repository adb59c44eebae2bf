package parsercommon

import (
	"context"
	"log/slog"
)

// LevelTrace is below Debug. Enable with &slog.HandlerOptions{Level: LevelTrace}.
const LevelTrace = slog.Level(-8)

var ctx = context.Background()

// Logger wraps an optional slog.Logger. The zero value discards everything.
type Logger struct {
	L *slog.Logger
}

// Enabled returns true if logging is enabled at the given level.
func (l Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(ctx, level)
}

// Log emits a log message if logging is enabled.
func (l Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.Enabled(level) {
		l.L.LogAttrs(ctx, level, msg, attrs...)
	}
}

// Trace emits a trace-level log.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.Log(LevelTrace, msg, attrs...)
}
