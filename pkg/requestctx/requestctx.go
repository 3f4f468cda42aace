package requestctx

import "context"

type ctxKey string

const (
	correlationIDKey ctxKey = "correlation_id"
	userIDKey        ctxKey = "user_id"
	sessionIDKey     ctxKey = "session_id"
)

// WithCorrelationID returns a new context with the provided correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID fetches the correlation ID from the context, if any.
func CorrelationID(ctx context.Context) string {
	if s, ok := ctx.Value(correlationIDKey).(string); ok {
		return s
	}
	return ""
}

// WithUserID returns a new context carrying the authenticated user's id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID fetches the authenticated user id from the context, if any.
func UserID(ctx context.Context) string {
	if s, ok := ctx.Value(userIDKey).(string); ok {
		return s
	}
	return ""
}

// WithSessionID returns a new context carrying the session (token) id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID fetches the session id from the context, if any.
func SessionID(ctx context.Context) string {
	if s, ok := ctx.Value(sessionIDKey).(string); ok {
		return s
	}
	return ""
}
