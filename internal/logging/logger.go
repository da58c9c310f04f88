package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// NewBootLogger returns a logger for one boot run. Lines carry a run ID so
// restart loops remain distinguishable in aggregated container logs. Output
// goes to stderr; stdout belongs to the launched commands.
func NewBootLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("run", shortRunID())
}

// NewNopLogger discards everything. Test use.
func NewNopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
