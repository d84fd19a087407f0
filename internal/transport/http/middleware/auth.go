package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/news-api/internal/domain"
	jwtinfra "github.com/news-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

type tokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// SessionChecker reports whether the session behind a token is still usable.
type SessionChecker interface {
	Active(ctx context.Context, sessionID string) (bool, error)
}

// Auth returns middleware that validates the Bearer JWT and injects claims
// into context. When sessions is non-nil, tokens of disabled or expired
// sessions are rejected as well.
func Auth(verifier tokenVerifier, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if sessions != nil {
				active, err := sessions.Active(r.Context(), claims.SessionID)
				if err != nil {
					slog.Warn("session lookup failed", "session_id", claims.SessionID, "err", err)
				}
				if err != nil || !active {
					writeJSONError(w, http.StatusUnauthorized, "session is no longer active")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// PrincipalFromContext returns the caller identity set by Auth.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return domain.Principal{}, false
	}
	return c.Principal(), true
}

// WithClaims stores claims in ctx as Auth would.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
