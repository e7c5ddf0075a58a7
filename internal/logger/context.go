package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey   contextKey = "request_id"
	recipientIDKey contextKey = "recipient_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithRecipientID(ctx context.Context, recipientID string) context.Context {
	return context.WithValue(ctx, recipientIDKey, recipientID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetRecipientID(ctx context.Context) string {
	if recipientID, ok := ctx.Value(recipientIDKey).(string); ok {
		return recipientID
	}
	return ""
}

// FromContext returns a logger carrying request_id and recipient_id
// when the context has them.
func FromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()

	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if recipientID := GetRecipientID(ctx); recipientID != "" {
		fields = append(fields, "recipient_id", recipientID)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}

func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	fields := append([]any{"error", err.Error()}, args...)
	FromContext(ctx).Error(msg, fields...)
}
