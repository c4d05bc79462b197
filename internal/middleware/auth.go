// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/services"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// NewJWTMiddleware requires an "Authorization: Bearer <token>" header and
// places the authenticated user in the request context.
func NewJWTMiddleware(authenticator Authenticator, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("bearer authentication failed",
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}
