package auth

import (
	"net/http"

	"shopfloor-console/internal/infra/httpserver"
	"shopfloor-console/internal/shared_kernel/domain"
)

// RequireAuthenticated gates a route on an active session.
func RequireAuthenticated(sessions *Manager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sessions.Authenticated() {
			httpserver.ReplyWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next(w, r)
	}
}

// RequireRole gates a route on the session's role. An unauthenticated
// request gets 401, an authenticated one with the wrong role gets 403.
func RequireRole(sessions *Manager, roles ...domain.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Authenticated() {
				httpserver.ReplyWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			current := sessions.Role()
			for _, role := range roles {
				if current == role {
					next(w, r)
					return
				}
			}

			httpserver.ReplyWithError(w, http.StatusForbidden, "insufficient role")
		}
	}
}
