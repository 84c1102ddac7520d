package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"powersched/internal/sched"
)

// WallClockKey replaces slog's built-in "time" key. Scheduling records log
// the simulated time under "time", so the two must not collide.
const WallClockKey = "ts"

// FromConfig builds the process logger from the log_level and log_format
// settings, writing to stderr; stdout carries the schedule summaries.
func FromConfig(cfg sched.Config) (*slog.Logger, error) {
	level, errLevel := ParseLevel(cfg.LogLevel)
	if errLevel != nil {
		return nil, errLevel
	}

	return New(os.Stderr, level, cfg.LogFormat), nil
}

// New creates a text or JSON logger; any format other than "json" is text.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameWallClock,
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func renameWallClock(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Key = WallClockKey
	}

	return a
}

// ParseLevel accepts debug, info, warn (or warning) and error, in any case.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}

	return level, nil
}
