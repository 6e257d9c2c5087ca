package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/httputil"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
					Code:    "UNSUPPORTED_MEDIA_TYPE",
					Message: "Content-Type must be application/json",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// MaintenanceChecker resolves the current maintenance setting.
type MaintenanceChecker func(ctx context.Context) (*domain.MaintenanceSetting, error)

// Maintenance returns middleware that serves 503 while maintenance mode is
// enabled. It fails open: if the setting cannot be resolved, traffic passes.
// Mounted on the public routes only; auth, health, and admin endpoints stay
// reachable so admins can log in and turn maintenance off.
func Maintenance(check MaintenanceChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m, err := check(r.Context())
			if err != nil {
				logger.WarnContext(r.Context(), "maintenance check failed",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			if m != nil && m.Enabled {
				message := m.Message
				if message == "" {
					message = "service is under maintenance"
				}
				httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{
					Code:    "SERVICE_UNAVAILABLE",
					Message: message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
