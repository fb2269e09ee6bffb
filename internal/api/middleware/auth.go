package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hackhub-dev/server/internal/api/problem"
	"github.com/hackhub-dev/server/internal/auth"
)

// AccountChecker reports whether the account behind a token may still act.
type AccountChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// Authenticate resolves a bearer token, when present, into an auth.Principal on the
// request context. It never rejects a request; RequireAuth and RequireRole do.
// With a non-nil accounts, tokens of deactivated or deleted users resolve to no
// principal.
func Authenticate(manager *auth.JWTManager, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || manager == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, err := auth.TokenFromHeader(header)
			if err == nil {
				var claims *auth.Claims
				claims, err = manager.Validate(token)
				if err == nil && accounts != nil {
					err = checkActive(ctx, accounts, claims.Subject)
				}
				if err == nil {
					ctx = WithPrincipal(ctx, claims.Principal())
				}
			}
			if err != nil {
				ctx = context.WithValue(ctx, authErrorKey, err)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func checkActive(ctx context.Context, accounts AccountChecker, userID string) error {
	active, err := accounts.IsActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if !active {
		return auth.ErrInactiveAccount
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				writeUnauthorized(w, r, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits authenticated callers holding one of roles.
func RequireRole(env string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, r, env)
				return
			}
			if !auth.HasRole(string(principal.Role), roles...) {
				problem.Write(w, r, http.StatusForbidden, "Access denied. Insufficient permissions.", problem.ErrForbidden, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, env string) {
	err, _ := r.Context().Value(authErrorKey).(error)
	switch {
	case err == nil, errors.Is(err, auth.ErrMissingToken):
		problem.Write(w, r, http.StatusUnauthorized, "Access denied. No token provided.", problem.ErrUnauthorized, env)
	default:
		problem.Write(w, r, http.StatusUnauthorized, "Invalid token.", err, env)
	}
}

func WithPrincipal(ctx context.Context, principal auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(auth.Principal)
	return principal, ok
}
