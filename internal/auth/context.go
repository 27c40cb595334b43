package auth

import "context"

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID attaches the acting user id to the context. Populated by the
// HTTP middleware or by event listeners before invoking a usecase.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID resolves the acting user id. The second return is false when no
// authenticated user is present.
func UserID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(userIDKey).(string)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}
