// Package logging builds the zerolog logger shared by the binaries and the
// request middleware, and emits audit events.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldEvent     = "event"
	FieldOutcome   = "outcome"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// New creates the root logger. format is "json" or "console".
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}

// Audit records a security-relevant event. Only the event name, the user id
// and the outcome are written; callers must not pass credentials in reason.
func Audit(ctx context.Context, event string, userID int64, outcome, reason string) {
	e := zerolog.Ctx(ctx).Info()
	if outcome == OutcomeFailure {
		e = zerolog.Ctx(ctx).Warn()
	}
	e = e.Str(FieldEvent, event).Str(FieldOutcome, outcome)
	if userID > 0 {
		e = e.Int64(FieldUserID, userID)
	}
	if reason != "" {
		e = e.Str("reason", reason)
	}
	e.Msg("audit")
}
