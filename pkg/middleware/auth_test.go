package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(claims **Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims != nil {
			*claims = ClaimsFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func acceptingValidator(claims *Claims) TokenValidator {
	return func(token string) (*Claims, error) {
		if token == "good-token" {
			return claims, nil
		}
		return nil, errors.New("bad token")
	}
}

func TestAuth_ValidToken(t *testing.T) {
	var seen *Claims
	claims := &Claims{SubjectID: "user-1", Roles: []string{"ADMIN"}}
	handler := Auth(acceptingValidator(claims))(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.SubjectID)
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := Auth(acceptingValidator(&Claims{}))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAuth_MalformedHeader(t *testing.T) {
	handler := Auth(acceptingValidator(&Claims{}))(okHandler(nil))

	for _, header := range []string{"good-token", "Basic good-token", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := Auth(acceptingValidator(&Claims{}))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tampered-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	handler := Auth(acceptingValidator(&Claims{SubjectID: "user-1"}))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_NoClaims(t *testing.T) {
	handler := RequireRoles("ADMIN")(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles_Insufficient(t *testing.T) {
	claims := &Claims{SubjectID: "user-1", Roles: []string{"USER"}}
	handler := Auth(acceptingValidator(claims))(RequireRoles("ADMIN", "SUPERADMIN")(okHandler(nil)))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestRequireRoles_Intersects(t *testing.T) {
	claims := &Claims{SubjectID: "user-1", Roles: []string{"USER", "ADMIN"}}
	handler := Auth(acceptingValidator(claims))(RequireRoles("ADMIN", "SUPERADMIN")(okHandler(nil)))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubjectIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, SubjectIDFromContext(req.Context()))
}
