package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	fileIndexKey contextKey = "file_index"
	targetKey    contextKey = "target_format"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFileIndex annotates context with the position of the file being
// converted within its batch.
func WithFileIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, fileIndexKey, index)
}

// FileIndexFromContext extracts the batch position if present.
func FileIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(fileIndexKey).(int)
	return v, ok
}

// WithTargetFormat annotates context with the requested output format.
func WithTargetFormat(ctx context.Context, target string) context.Context {
	if target == "" {
		return ctx
	}
	return context.WithValue(ctx, targetKey, target)
}

// TargetFormatFromContext returns the requested output format if present.
func TargetFormatFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(targetKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
