package rbac

import (
	"log/slog"
	"net/http"

	"github.com/stitchline-erp/stitchline-erp/internal/shared"
)

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Checker *Checker
	Logger  *slog.Logger
}

// Require ensures the current actor's role allows the operation.
func (m Middleware) Require(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.ActorFromContext(r.Context())
			if m.Checker.Allow(actor.Role, operation) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("capability denied",
					slog.String("role", actor.Role),
					slog.String("operation", operation),
					slog.String("path", r.URL.Path))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
