// File: internal/middleware/admin_middleware.go
package middleware

import (
	"net/http"

	"github.com/iyunix/chat-gateway/internal/services"
)

// RequireAdmin is a middleware that checks if the authenticated user has admin privileges.
// It MUST be used AFTER the JWT authentication middleware.
func RequireAdmin(logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				logger.Warn("admin route reached without an authenticated user", "path", r.URL.Path)
				writeDetail(w, http.StatusForbidden, "Forbidden - Admin access required")
				return
			}

			if !user.IsAdmin {
				logger.Warn("non-admin user attempted to access admin route",
					"user_id", user.ID,
					"path", r.URL.Path)
				writeDetail(w, http.StatusForbidden, "Forbidden - Admin access required")
				return
			}

			logger.Info("admin route accessed", "user_id", user.ID, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
