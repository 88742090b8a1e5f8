package jwt

import (
	"context"
	"net/http"

	"github.com/binay-das/draw-it/internal/pkg/auth"
	"github.com/binay-das/draw-it/internal/pkg/errs"
	"github.com/binay-das/draw-it/internal/pkg/logx"
	"github.com/binay-das/draw-it/internal/pkg/resp"
)

// TokenCookieName is the cookie carrying the credential on both the REST API
// and the WebSocket handshake.
const TokenCookieName = "token"

// Define Context Key for storing the user id, preventing key collisions with other packages.
type contextKey string

const (
	// ContextUserIDKey is the key used to store the verified user id in the request Context.
	ContextUserIDKey contextKey = "auth_user_id"
)

// CookieAuthMiddleware extracts the token cookie, verifies it through the supplied
// Verifier, and injects the user id into the request Context. Requests without a
// valid credential are rejected with 401.
func CookieAuthMiddleware(verifier auth.Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookieName)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			userID, err := verifier.Verify(cookie.Value)
			if err != nil {
				logx.Warn("Rejected request with bad credential", "error", err.Error())
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserIDKey, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext safely extracts the verified user id from the request Context.
// An empty return means the request did not pass through CookieAuthMiddleware.
func UserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(ContextUserIDKey).(string)
	if !ok {
		return ""
	}

	return userID
}
