package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	// RequestIDKey holds the request ID in a context
	RequestIDKey contextKey = "request_id"
	// AdviserIDKey holds the authenticated adviser ID in a context
	AdviserIDKey contextKey = "adviser_id"
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in ctx and attaches a logger tagged with it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l := logger.With(zap.String("request_id", requestID))
	return WithContext(context.WithValue(ctx, RequestIDKey, requestID), l), l
}

// WithAdviserID stores the adviser ID in ctx and attaches a logger tagged with it
func WithAdviserID(ctx context.Context, logger *zap.Logger, adviserID string) (context.Context, *zap.Logger) {
	l := logger.With(zap.String("adviser_id", adviserID))
	return WithContext(context.WithValue(ctx, AdviserIDKey, adviserID), l), l
}

// GetRequestID returns the request ID stored in ctx
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetAdviserID returns the adviser ID stored in ctx
func GetAdviserID(ctx context.Context) string {
	id, _ := ctx.Value(AdviserIDKey).(string)
	return id
}

// GetTraceID returns the trace ID of the active span, or ""
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the ID of the active span, or ""
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// Fields returns the correlation fields found in ctx: trace and span IDs,
// request ID and adviser ID
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetAdviserID(ctx); id != "" {
		fields = append(fields, zap.String("adviser_id", id))
	}
	return fields
}

// L returns the logger attached to ctx tagged with the active trace.
// Request and adviser IDs are already on loggers attached by WithRequestID
// and WithAdviserID.
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
