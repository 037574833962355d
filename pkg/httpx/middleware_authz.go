package httpx

import (
	"net/http"
	"slices"
)

// RequireRole lets the request through only when the token's role is one
// of roles. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "Authentication credentials were not provided.", "not_authenticated")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				WriteDetail(w, http.StatusForbidden,
					"You do not have permission to perform this action.", "permission_denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
