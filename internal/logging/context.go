package logging

import (
	"context"
	"log/slog"

	"mashup/internal/services"
)

// Attribute keys shared by every component so log lines can be filtered
// uniformly in both console and JSON output.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type" // e.g. "acquire_complete"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"
)

var contextExtractors = []struct {
	key string
	get func(context.Context) (string, bool)
}{
	{FieldJobID, services.JobIDFromContext},
	{FieldStage, services.StageFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the job, stage and request identifiers carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, x := range contextExtractors {
		if value, ok := x.get(ctx); ok {
			attrs = append(attrs, slog.String(x.key, value))
		}
	}
	return attrs
}

// WithContext binds ContextFields(ctx) to logger. A nil logger is replaced
// by one that discards.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if attrs := ContextFields(ctx); len(attrs) > 0 {
		return logger.With(attrsToArgs(attrs)...)
	}
	return logger
}
