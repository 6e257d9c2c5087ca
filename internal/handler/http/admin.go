package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
	"github.com/Viperzz6988/NurvioV5-admin/internal/service"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/httputil"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/middleware"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/pagination"
)

// AdminHandler handles HTTP requests for the admin surface.
type AdminHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

func actorFromRequest(r *http.Request) service.Actor {
	return service.Actor{
		ID:        middleware.SubjectIDFromContext(r.Context()),
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// --- Users ---

// CreateUserRequest is the JSON request body for creating a user.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email,max=255"`
	Username string   `json:"username" validate:"required,min=3,max=32"`
	Password string   `json:"password" validate:"required,min=8,max=255"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=GUEST USER ADMIN SUPERADMIN"`
}

// UpdateUserRequest is the JSON request body for updating a user.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string  `json:"email" validate:"omitempty,email,max=255"`
	Username *string  `json:"username" validate:"omitempty,min=3,max=32"`
	Password *string  `json:"password" validate:"omitempty,min=8,max=255"`
	Roles    []string `json:"roles" validate:"omitempty,min=1,dive,oneof=GUEST USER ADMIN SUPERADMIN"`
	IsBanned *bool    `json:"isBanned"`
}

// BulkIDsRequest is the JSON request body for bulk delete.
type BulkIDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// BulkRolesRequest is the JSON request body for bulk role assignment.
type BulkRolesRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=GUEST USER ADMIN SUPERADMIN"`
}

// BulkBanRequest is the JSON request body for bulk ban/unban.
type BulkBanRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,uuid"`
	Banned *bool    `json:"banned" validate:"required"`
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.UserFilter{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
		Skip:   params.Skip,
		Take:   params.Take,
	}
	switch r.URL.Query().Get("banned") {
	case "true":
		banned := true
		filter.Banned = &banned
	case "false":
		banned := false
		filter.Banned = &banned
	}

	users, total, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(users, total, params))
}

// CreateUser handles POST /admin/users.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), actorFromRequest(r), service.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /admin/users/{id}.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), actorFromRequest(r), id.String(), service.UpdateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
		IsBanned: req.IsBanned,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actorFromRequest(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BulkDeleteUsers handles POST /admin/users/bulk/delete.
func (h *AdminHandler) BulkDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req BulkIDsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	count, err := h.service.BulkDeleteUsers(r.Context(), actorFromRequest(r), req.IDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"affected": count})
}

// BulkSetRoles handles POST /admin/users/bulk/role.
func (h *AdminHandler) BulkSetRoles(w http.ResponseWriter, r *http.Request) {
	var req BulkRolesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	count, err := h.service.BulkSetRoles(r.Context(), actorFromRequest(r), req.IDs, req.Roles)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"affected": count})
}

// BulkSetBanned handles POST /admin/users/bulk/ban.
func (h *AdminHandler) BulkSetBanned(w http.ResponseWriter, r *http.Request) {
	var req BulkBanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	count, err := h.service.BulkSetBanned(r.Context(), actorFromRequest(r), req.IDs, *req.Banned)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"affected": count})
}

// --- Feature flags, maintenance, cache ---

// ToggleFlagRequest is the JSON request body for toggling a feature flag.
type ToggleFlagRequest struct {
	Key     string `json:"key" validate:"required,min=1,max=64"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

// MaintenanceRequest is the JSON request body for the maintenance toggle.
type MaintenanceRequest struct {
	Enabled *bool  `json:"enabled" validate:"required"`
	Message string `json:"message" validate:"max=500"`
}

// ListFlags handles GET /admin/feature-flags.
func (h *AdminHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.ListFlags(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if flags == nil {
		flags = []domain.FeatureFlag{}
	}
	httputil.WriteJSON(w, http.StatusOK, flags)
}

// ToggleFlag handles POST /admin/feature-flags.
func (h *AdminHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	var req ToggleFlagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	flag, err := h.service.ToggleFlag(r.Context(), actorFromRequest(r), req.Key, *req.Enabled)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, flag)
}

// GetMaintenance handles GET /admin/maintenance.
func (h *AdminHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Maintenance(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, m)
}

// SetMaintenance handles POST /admin/maintenance.
func (h *AdminHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	var req MaintenanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	m := domain.MaintenanceSetting{Enabled: *req.Enabled, Message: req.Message}
	if err := h.service.SetMaintenance(r.Context(), actorFromRequest(r), m); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, m)
}

// ClearCache handles POST /admin/cache/clear.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCache(r.Context(), actorFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Observability, audit, export ---

// Metrics handles GET /admin/metrics.
func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Metrics(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, m)
}

// AuditLogs handles GET /admin/audit-logs.
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.AuditLogFilter{
		UserID: r.URL.Query().Get("userId"),
		Action: r.URL.Query().Get("action"),
		Skip:   params.Skip,
		Take:   params.Take,
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Code: "INVALID_PARAMETER", Message: "from must be RFC 3339",
			})
			return
		}
		filter.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Code: "INVALID_PARAMETER", Message: "to must be RFC 3339",
			})
			return
		}
		filter.To = &t
	}

	entries, total, err := h.service.AuditLogs(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(entries, total, params))
}

// Leaderboard handles GET /admin/leaderboard.
func (h *AdminHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// Export handles GET /admin/export.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.service.Export(r.Context(), actorFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="nurvio-export.json"`)
	httputil.WriteJSON(w, http.StatusOK, bundle)
}

// Import handles POST /admin/import.
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	var bundle domain.ExportBundle
	if !decodeAndValidateLimit(w, r, &bundle, maxImportBytes) {
		return
	}

	if err := h.service.Import(r.Context(), actorFromRequest(r), &bundle); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
