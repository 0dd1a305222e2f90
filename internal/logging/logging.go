package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger. format "console" gives human output,
// anything else JSON lines.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Caller().Logger()
}

// LogEvent logs a structured event with optional user info.
func LogEvent(logger zerolog.Logger, event, userID string, details map[string]interface{}) {
	e := logger.Info().Str("event", event)
	if userID != "" {
		e = e.Str("userID", userID)
	}
	if len(details) > 0 {
		e = e.Fields(details)
	}
	e.Msg(event)
}
