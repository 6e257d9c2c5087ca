package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/service"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/httputil"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/middleware"
)

// PublicHandler handles the unauthenticated leaderboard and contact endpoints.
type PublicHandler struct {
	service *service.PublicService
	logger  *slog.Logger
}

// NewPublicHandler creates a new public HTTP handler.
func NewPublicHandler(svc *service.PublicService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{service: svc, logger: logger}
}

// ContactRequest is the JSON request body for the contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// Leaderboard handles GET /leaderboard.
func (h *PublicHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// Contact handles POST /contact.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.SubmitContact(r.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		IP:      middleware.ClientIP(r),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
