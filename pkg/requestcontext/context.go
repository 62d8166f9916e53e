// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http, which keeps the domain packages transport-free.
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	userIDKey    struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyUserID    = userIDKey{}
	ContextKeyClientIP  = clientIPKey{}
	ContextKeyUserAgent = userAgentKey{}
	ContextKeyRequestID = requestIDKey{}
)

// UserID retrieves the authenticated user ID, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserID).(string)
	return v
}

// WithUserID injects the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// ClientIP retrieves the transport-derived source address. Defaults to
// "unknown" so security records never store an empty provenance field.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyClientIP).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithClientIP injects the transport-derived source address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// UserAgent retrieves the transport-derived user agent, or "".
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserAgent).(string)
	return v
}

// WithUserAgent injects the transport-derived user agent.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgent, ua)
}

// RequestID retrieves the correlation ID assigned by middleware, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyRequestID).(string)
	return v
}

// WithRequestID injects the correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}
