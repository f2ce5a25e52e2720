package observability

import (
	"log/slog"
	"os"

	"github.com/verdantlab/envsim-dashboard/internal/config"
)

// NewLogger builds the process-wide structured logger from config. Format is
// JSON by default; LOG_FORMAT=text switches to the text handler for local
// development.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// parseLevel maps the config level string to a slog.Level. Config validation
// rejects unknown levels before this runs; the fallback is info.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
