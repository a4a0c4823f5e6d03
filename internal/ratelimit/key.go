package ratelimit

import (
	"net/http"

	"github.com/miro-workspace/aigateway/internal/auth"
)

// AnonymousKey is the shared bucket for unidentified, non-forwarded
// callers. Every such caller draws from the same quota; the workspace
// product ships this behavior deliberately as a conservative default.
const AnonymousKey = "anonymous"

// CallerKey derives the limiter partition key for a request. Precedence:
// authenticated user id, then the X-Forwarded-For header, then the shared
// anonymous bucket.
func CallerKey(r *http.Request) string {
	if userID := auth.UserIDFromContext(r.Context()); userID != "" {
		return "user:" + userID
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return "ip:" + forwarded
	}
	return AnonymousKey
}

// KeyClass reports the key's derivation class for metrics labels, keeping
// user ids and addresses out of the label space.
func KeyClass(key string) string {
	switch {
	case key == AnonymousKey:
		return "anonymous"
	case len(key) > 5 && key[:5] == "user:":
		return "user"
	default:
		return "ip"
	}
}
