// Package auth extracts caller identity from session tokens. Session
// issuance and account management live in the workspace auth service; the
// gateway only needs a user id for rate-limit partitioning.
package auth

import "context"

type userIDKey struct{}

// ContextWithUserID attaches an authenticated user id to the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, or "" for anonymous
// requests.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}
