package common

import (
	"context"
	"time"
)

// Keys for request-scoped values threaded from the transport layer down
// to pipeline and oracle logging.
type contextKey string

const (
	ContextKeyRequestID     contextKey = "request_id"
	ContextKeyApplicationID contextKey = "application_id"
)

// WithRequestID attaches the per-submission correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext returns the correlation id, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithApplicationID attaches the application under screening.
func WithApplicationID(ctx context.Context, applicationID string) context.Context {
	return context.WithValue(ctx, ContextKeyApplicationID, applicationID)
}

// ApplicationIDFromContext returns the application id, or "" when absent.
func ApplicationIDFromContext(ctx context.Context) string {
	if applicationID, ok := ctx.Value(ContextKeyApplicationID).(string); ok {
		return applicationID
	}
	return ""
}

// WithTimeout creates a context with the specified timeout. A zero timeout
// leaves the parent untouched.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}
