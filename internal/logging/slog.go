package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	opLogger atomic.Pointer[slog.Logger]
	logLevel = new(slog.LevelVar)
)

func init() {
	logLevel.Set(slog.LevelInfo)
	opLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

// Op returns the process-wide operational logger.
func Op() *slog.Logger {
	return opLogger.Load()
}

// SetLogger replaces the operational logger. A nil logger is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		opLogger.Store(l)
	}
}

// SetLevel changes the log level for the operational logger.
func SetLevel(level slog.Level) {
	logLevel.Set(level)
}

// SetLevelFromString sets the log level from a string.
// Valid values: "debug", "info", "warn", "error". Anything else is ignored.
func SetLevelFromString(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	}
}

// Init rebuilds the operational logger writing to stderr.
// format is "json" or "text" (default).
func Init(format, level string) {
	InitWriter(os.Stderr, format, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, format, level string) {
	SetLevelFromString(level)
	opts := &slog.HandlerOptions{Level: logLevel}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	opLogger.Store(slog.New(h))
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
