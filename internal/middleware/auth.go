package middleware

import (
	"context"
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// AccessCookie is the name of the HTTP-only cookie carrying the access token.
const AccessCookie = "accessToken"

// RefreshCookie is the name of the HTTP-only cookie carrying the refresh token.
const RefreshCookie = "refreshToken"

type userIDKey struct{}

// AccessVerifier validates an access token and resolves the user it belongs to.
type AccessVerifier interface {
	Verify(accessToken string) (string, error)
}

// WithUserID stores the authenticated user's ID on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user's ID, or "" when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireAuth rejects requests without a valid access-token cookie and
// stores the resolved user ID on the request context.
func RequireAuth(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := verifyCookie(verifier, r)
			if !ok {
				logging.FromContext(r.Context()).Warn("unauthenticated request", "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"statusCode":401,"message":"authentication required","success":false,"errors":[]}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth resolves the user when a valid cookie is present but lets
// anonymous requests through. Listing endpoints use it so visibility
// filtering can still recognise owners.
func OptionalAuth(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := verifyCookie(verifier, r); ok {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyCookie(verifier AccessVerifier, r *http.Request) (string, bool) {
	if verifier == nil {
		return "", false
	}
	cookie, err := r.Cookie(AccessCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	userID, err := verifier.Verify(cookie.Value)
	if err != nil {
		return "", false
	}
	return userID, true
}
