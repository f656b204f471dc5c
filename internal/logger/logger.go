package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerIDKey
	jobKey
)

// GenerateRequestID creates a new UUID for tracing requests
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithRequestID tags ctx with the id of the request or job run it serves
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithCaller tags ctx with the caller an economy operation acts for
func WithCaller(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDKey, callerID)
}

// WithJob tags ctx with the name of the background job running under it
func WithJob(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, jobKey, name)
}

// RequestIDFromContext extracts the request ID from the context, if present
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

// CallerFromContext extracts the caller ID from the context, if present
func CallerFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, callerIDKey)
}

// JobFromContext extracts the background job name from the context, if present
func JobFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, jobKey)
}

func stringValue(ctx context.Context, key ctxKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// FromContext returns the default logger with whatever request, caller and
// job tags ctx carries
func FromContext(ctx context.Context) *slog.Logger {
	var attrs []any
	if id, ok := stringValue(ctx, requestIDKey); ok {
		attrs = append(attrs, AttrKeyRequestID, id)
	}
	if id, ok := stringValue(ctx, callerIDKey); ok {
		attrs = append(attrs, AttrKeyCallerID, id)
	}
	if name, ok := stringValue(ctx, jobKey); ok {
		attrs = append(attrs, AttrKeyJob, name)
	}
	if len(attrs) == 0 {
		return slog.Default()
	}
	return slog.Default().With(attrs...)
}
