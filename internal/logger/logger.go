// Package logger holds the diagnostic logger shared by the heapkit packages.
// Diagnostics are off unless explicitly enabled; allocator behavior never
// depends on whether they are.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// EnvVar enables debug logging to stderr when set to any non-empty value.
const EnvVar = "HEAPKIT_LOG_ALLOC"

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() or FromEnv() to enable logging.
var L = discard()

// Options configures the logger initialization.
type Options struct {
	Enabled bool         // If false, all logging is discarded
	Writer  io.Writer    // Destination. Default: os.Stderr
	Level   slog.Leveler // Minimum log level. Default (nil): LevelDebug
	JSON    bool         // Emit JSON records instead of key=value text
}

// Init configures logging. Call from main() before any log calls.
// If opts.Enabled is false, all log output is discarded.
func Init(opts Options) {
	if !opts.Enabled {
		L = discard()
		return
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelDebug
	if opts.Level != nil {
		level = opts.Level
	}

	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, hopts))
		return
	}
	L = slog.New(slog.NewTextHandler(w, hopts))
}

// FromEnv enables debug text logging on stderr when EnvVar is set.
// It reports whether logging was enabled.
func FromEnv() bool {
	enabled := os.Getenv(EnvVar) != ""
	Init(Options{Enabled: enabled})
	return enabled
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
