// Package log is a process-wide leveled logger on top of log/slog.
// Output goes to stderr as logfmt-style text unless redirected with SetOutput.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level  slog.LevelVar
	logger atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(LevelInfo)
	SetOutput(os.Stderr)
}

// SetOutput redirects log output to w. args are key/value attributes
// attached to every record, such as a run identifier.
func SetOutput(w io.Writer, args ...any) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level})
	logger.Store(slog.New(h).With(args...))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return level.Level()
}

// ParseLevel parses "debug", "info", "warn" or "error" (any case).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return LevelInfo, fmt.Errorf("parsing log level %q: %w", s, err)
	}
	return l, nil
}

// Debug logs at debug level with key/value attributes.
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// Info logs at info level with key/value attributes.
func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

// Warn logs at warn level with key/value attributes.
func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

// Error logs at error level with key/value attributes.
func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}
