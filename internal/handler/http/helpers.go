package http

import (
	"encoding/json"
	"net/http"

	"github.com/Viperzz6988/NurvioV5-admin/pkg/httputil"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/validator"
)

// maxBodyBytes caps regular JSON request bodies.
const maxBodyBytes = 1 << 20 // 1MB

// maxImportBytes caps the /admin/import payload, which carries a full data snapshot.
const maxImportBytes = 32 << 20 // 32MB

// decodeAndValidate reads the JSON body into dst and validates it. On failure
// it writes the 400 response itself and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeAndValidateLimit(w, r, dst, maxBodyBytes)
}

func decodeAndValidateLimit(w http.ResponseWriter, r *http.Request, dst any, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Code:    "INVALID_INPUT",
			Message: "invalid request body: " + err.Error(),
		})
		return false
	}

	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}

	return true
}
