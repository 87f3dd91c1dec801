// internal/cli/log.go
package cli

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// newLogger builds the application logger. The text format goes through the
// charm console handler, json through slog's JSON handler.
func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if format == "json" {
		lv := new(slog.LevelVar)
		lv.Set(level)
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv}))
	}
	return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           charmlog.Level(level),
	}))
}
