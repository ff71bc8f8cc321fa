package services

import "context"

// ctxKey keys the string values pipeline code threads through contexts.
type ctxKey uint8

const (
	keyJob ctxKey = iota + 1
	keyStage
	keyRequest
)

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	value, _ := ctx.Value(key).(string)
	return value, value != ""
}

// WithJobID tags ctx with the mashup job it serves.
func WithJobID(ctx context.Context, id string) context.Context { return withString(ctx, keyJob, id) }

func JobIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, keyJob) }

// WithStage tags ctx with the pipeline stage (acquire, trim, merge, deliver).
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, keyStage, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, keyStage) }

// WithRequestID tags ctx with the HTTP correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, keyRequest, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, keyRequest) }
