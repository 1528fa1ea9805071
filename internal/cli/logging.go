package cli

import (
	"io"
	"log/slog"
)

// newLogger builds the process logger. Logs go to stderr so that
// structured command output on stdout stays parseable.
func newLogger(w io.Writer, g globalFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case g.verbose:
		level = slog.LevelDebug
	case g.quiet:
		level = slog.LevelWarn
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if g.logFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
