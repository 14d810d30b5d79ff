package xsd

import (
	"log/slog"
	"os"
)

// NewLogger builds a structured logger: JSON to stderr at the given level,
// matching the teacher's slog usage in schema_loader.go and
// cache.go (both call the package-level slog.* functions against whatever
// slog.Default() is set to). BuildOptions.Logger and Validator's logger both
// default to slog.Default() when unset, so an application wires its own
// handler once via slog.SetDefault and every xsd call picks it up; NewLogger
// is offered for callers that want an explicit non-default instance instead.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
