package logging

import (
	"io"
	"log/slog"
	"strings"
)

const (
	// FieldLearnerID is the field name for the learner id.
	FieldLearnerID = "learner_id"
	// FieldItemID is the field name for a vocabulary item id.
	FieldItemID = "item_id"
	// FieldSessionID is the field name for a study session id.
	FieldSessionID = "session_id"
	// FieldAchievementID is the field name for an achievement id.
	FieldAchievementID = "achievement_id"
	// FieldComponent is the field name for the emitting component.
	FieldComponent = "component"
)

// New builds a logger writing to w. format is "json" or "text"; level is one
// of debug, info, warn, error and defaults to info.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Component tags a logger with the emitting component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With(slog.String(FieldComponent, name))
}
