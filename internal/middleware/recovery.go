// File: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/iyunix/chat-gateway/internal/services"
)

// RecoverPanic turns a handler panic into a 500 whose detail is the panic
// value.
func RecoverPanic(logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"path", r.URL.Path,
						"panic", fmt.Sprint(rec),
						"stack", string(debug.Stack()))

					w.Header().Set("Connection", "close")
					writeDetail(w, http.StatusInternalServerError, fmt.Sprint(rec))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
