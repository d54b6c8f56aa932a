package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyOrgID     contextKey = "org_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithOrgID adds an organization ID to the context
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, ContextKeyOrgID, orgID)
}

// OrgIDFromContext extracts the organization ID from context
func OrgIDFromContext(ctx context.Context) string {
	if orgID, ok := ctx.Value(ContextKeyOrgID).(string); ok {
		return orgID
	}
	return ""
}

// LoggerFrom returns base decorated with the request and org IDs found in ctx.
func LoggerFrom(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		base = base.With("req_id", id)
	}
	if org := OrgIDFromContext(ctx); org != "" {
		base = base.With("org_id", org)
	}
	return base
}
