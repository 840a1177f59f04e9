package common

import (
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog default. Format is "json" for
// machine-readable log streams or "console" for local runs; anything else
// falls back to console output.
func SetupLogger(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
