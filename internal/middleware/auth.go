package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"irokart-be/internal/apperr"
	"irokart-be/internal/auth"
	"irokart-be/internal/transport"
	"irokart-be/internal/utils"
)

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// Auth is passive: requests without a token pass through anonymously. A token
// that fails to parse is rejected, except on /api/auth/ so a stale session can
// still sign in again.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.Parse(tokenStr)
			if err != nil {
				if strings.HasPrefix(r.URL.Path, "/api/auth/") {
					next.ServeHTTP(w, r)
					return
				}
				transport.WriteError(w, r, apperr.New(apperr.Unauthorized, "invalid or expired token"))
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.Subject, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects anonymous callers with 401 and callers whose role is
// not in roles with 403. Requests the rate limiter marked internal pass.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if utils.IsInternalRequest(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				transport.WriteError(w, r, apperr.New(apperr.Unauthorized, "authentication required"))
				return
			}

			role := utils.GetUserRoleFromContext(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			transport.WriteError(w, r, apperr.New(apperr.Forbidden, "insufficient permissions"))
		})
	}
}

// AccountLookup returns the stored role and account status for a user id.
type AccountLookup interface {
	Account(ctx context.Context, id string) (role, status string, err error)
}

// RequireActiveRole is RequireRole plus a lookup of the stored account, so a
// suspension or demotion takes effect before the caller's token expires.
func RequireActiveRole(accounts AccountLookup, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireRole(roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				// internal caller
				next.ServeHTTP(w, r)
				return
			}

			role, status, err := accounts.Account(r.Context(), userID)
			if err != nil {
				if apperr.KindOf(err) == apperr.NotFound {
					transport.WriteError(w, r, apperr.New(apperr.Forbidden, "insufficient permissions"))
					return
				}
				transport.WriteError(w, r, err)
				return
			}
			if status != "active" {
				transport.WriteError(w, r, apperr.New(apperr.Forbidden, "account is not active"))
				return
			}
			if !slices.Contains(roles, role) {
				transport.WriteError(w, r, apperr.New(apperr.Forbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
