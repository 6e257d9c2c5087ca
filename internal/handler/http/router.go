package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/service"
	"github.com/Viperzz6988/NurvioV5-admin/internal/token"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/health"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/middleware"
)

// RouterConfig carries the knobs the router needs beyond its collaborators.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	LoginRPS       float64
	LoginBurst     int
	ContactRPS     float64
	ContactBurst   int
	TracingEnabled bool
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	authService *service.AuthService,
	adminService *service.AdminService,
	publicService *service.PublicService,
	codec *token.Codec,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("admin-backend"))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing("admin-backend"))
	}

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator bridging the codec into the auth middleware.
	tokenValidator := func(tokenString string) (*middleware.Claims, error) {
		claims, err := codec.VerifyAccess(tokenString)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			SubjectID: claims.SubjectID,
			Roles:     claims.Roles,
		}, nil
	}

	authHandler := NewAuthHandler(authService, logger)

	// Public auth endpoints. Login is rate limited per IP.
	r.Route("/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.With(middleware.RateLimit(cfg.LoginRPS, cfg.LoginBurst, logger)).Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/guest", authHandler.Guest)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	// Public endpoints, dark while maintenance mode is on.
	publicHandler := NewPublicHandler(publicService, logger)
	r.Group(func(r chi.Router) {
		r.Use(Maintenance(adminService.Maintenance, logger))

		r.Get("/leaderboard", publicHandler.Leaderboard)
		r.With(
			ContentTypeJSON,
			middleware.RateLimit(cfg.ContactRPS, cfg.ContactBurst, logger),
		).Post("/contact", publicHandler.Contact)
	})

	// Admin surface: authenticated, role gated, every mutation audited.
	adminHandler := NewAdminHandler(adminService, logger)
	r.Route("/admin", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin))

		r.Get("/users", adminHandler.ListUsers)
		r.Post("/users", adminHandler.CreateUser)
		r.Put("/users/{id}", adminHandler.UpdateUser)
		r.Delete("/users/{id}", adminHandler.DeleteUser)
		r.Post("/users/bulk/delete", adminHandler.BulkDeleteUsers)
		r.Post("/users/bulk/role", adminHandler.BulkSetRoles)
		r.Post("/users/bulk/ban", adminHandler.BulkSetBanned)

		r.Get("/feature-flags", adminHandler.ListFlags)
		r.Post("/feature-flags", adminHandler.ToggleFlag)
		r.Get("/maintenance", adminHandler.GetMaintenance)
		r.Post("/maintenance", adminHandler.SetMaintenance)
		r.Post("/cache/clear", adminHandler.ClearCache)

		r.Get("/metrics", adminHandler.Metrics)
		r.Get("/audit-logs", adminHandler.AuditLogs)
		r.Get("/leaderboard", adminHandler.Leaderboard)
		r.Get("/export", adminHandler.Export)
		r.Post("/import", adminHandler.Import)
	})

	return r
}
