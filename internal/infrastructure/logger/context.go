package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	tenantIDKey
	sessionIDKey
)

// WithContext attaches a logger to the context
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the context's logger, or a no-op logger when none
// was attached
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns a logger carrying it
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	log = log.With(zap.String("request_id", requestID))
	return WithContext(ctx, log), log
}

// WithTenantID stores the tenant id and returns a logger carrying it, so
// every line of a tenant's sync run can be filtered by tenant
func WithTenantID(ctx context.Context, log *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	log = log.With(zap.String("tenant_id", tenantID))
	return WithContext(ctx, log), log
}

// WithSessionID stores the enrollment wizard session id and returns a
// logger carrying it
func WithSessionID(ctx context.Context, log *zap.Logger, sessionID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	log = log.With(zap.String("session_id", sessionID))
	return WithContext(ctx, log), log
}

// RequestIDFrom returns the request id stored in the context, if any
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// TenantIDFrom returns the tenant id stored in the context, if any
func TenantIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(tenantIDKey).(string)
	return id
}
