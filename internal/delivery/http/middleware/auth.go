package middleware

import (
	"context"
	"net/http"
	"strings"

	h "boardroom/internal/delivery/http/helpers"
	"boardroom/internal/domain"
)

type contextKey string

const (
	boardIDKey   contextKey = "boardID"
	sessionIDKey contextKey = "sessionID"
)

// SetBoardSession returns a context carrying the board and client session ids. Used by auth middleware.
func SetBoardSession(ctx context.Context, boardID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, boardIDKey, boardID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// BoardIDFromContext returns the authorized board id from the context, if present.
func BoardIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(boardIDKey).(string)
	return id, ok
}

// SessionIDFromContext returns the client session id from the context, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// RequireSession returns a wrapper that validates the Bearer token and sets the
// board and session ids in the request context. If the token is missing or
// invalid, it responds with 401 and does not call next.
func RequireSession(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			boardID, sessionID, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetBoardSession(r.Context(), boardID, sessionID))
			next(w, r)
		}
	}
}
