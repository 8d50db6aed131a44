package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/devcamper/pkg/logger"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

// TokenValidator turns a bearer token into an Identity.
type TokenValidator func(token string) (*Identity, error)

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller stored by Auth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Auth rejects requests without a valid bearer token with 401 and otherwise
// stores the caller's Identity in the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				reject(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "not authorized to access this route")
				return
			}
			id, err := validate(token)
			if err != nil {
				reject(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), *id)
			ctx = logger.WithUserID(ctx, id.UserID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", id.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only callers whose role is in roles. It must run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				reject(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "not authorized to access this route")
				return
			}
			if !allowed[id.Role] {
				reject(w, r, http.StatusForbidden, "FORBIDDEN", "user role "+id.Role+" is not authorized to access this route")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
