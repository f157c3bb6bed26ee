package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/transport"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RecoveryMiddleware turns a panic into a 500 with the standard error body.
// The panic value is logged, never echoed to the client.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				base.Logger.ErrorContext(r.Context(), "panic recovered",
					"error", rec,
					"request_id", chiMiddleware.GetReqID(r.Context()),
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))

				base.WriteAppError(w, internal.NewInternalError("An unexpected error occurred", fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
