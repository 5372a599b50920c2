package identity

import "context"

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"
)

// WithUser sets the authenticated user id into context (called by middleware).
func WithUser(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithSessionID sets the caller's session id into context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// UserID retrieves the authenticated user id safely.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

// IsAuthenticated reports whether the context carries an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	id, ok := UserID(ctx)
	return ok && id != 0
}

// SessionID retrieves the caller's session id, or "" when absent.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}
