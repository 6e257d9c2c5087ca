package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/Viperzz6988/NurvioV5-admin/pkg/errors"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/logger"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/validator"
)

// ErrorResponse is the JSON error body returned by every endpoint. Errors are
// written at the top level rather than wrapped in an envelope, matching the
// shape browser clients already consume.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// sentinelBody maps each package sentinel to the client-facing code and
// message used when no AppError is in the chain. Invalid-input errors keep
// their own message since it is written for the caller.
var sentinelBody = []struct {
	sentinel error
	code     string
	message  string
}{
	{apperrors.ErrNotFound, "NOT_FOUND", "resource not found"},
	{apperrors.ErrAlreadyExists, "ALREADY_EXISTS", "resource already exists"},
	{apperrors.ErrInvalidInput, "INVALID_INPUT", ""},
	{apperrors.ErrUnauthorized, "UNAUTHORIZED", "unauthorized"},
	{apperrors.ErrForbidden, "FORBIDDEN", "forbidden"},
}

// WriteError renders err as a standardized error body. An AppError in the
// chain is rendered as-is; bare sentinels get a generic body; anything else
// becomes a 500 and is logged with the request-scoped logger when the
// logging middleware has been mounted, falling back otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.Status, ErrorResponse{
			Code: appErr.Code, Message: appErr.Message, RequestID: requestID,
		})
		return
	}

	code := "INTERNAL_ERROR"
	message := "an internal error occurred"
	for _, m := range sentinelBody {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		code = m.code
		if message = m.message; message == "" {
			message = err.Error()
		}
		break
	}

	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() {
			l = fallback
		}
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorResponse{Code: code, Message: message, RequestID: requestID})
}

// WriteValidationError renders a 400 with per-field messages when err is a
// validator.ValidationError, or a generic invalid-input body otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
}

// ParseUUID parses a path parameter as a UUID. On failure it writes a 400
// with code INVALID_PARAMETER and returns false so the caller can return
// early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "invalid UUID: " + param,
		})
		return uuid.Nil, false
	}
	return id, true
}
