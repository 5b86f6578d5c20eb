package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func authedHandler(apiKey string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyMiddleware(apiKey)(next)
}

func TestAPIKeyMiddleware_EmptyKeyDisablesAuth(t *testing.T) {
	handler := authedHandler("")

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyMiddleware_MissingKeyRejected(t *testing.T) {
	handler := authedHandler("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "API key")
}

func TestAPIKeyMiddleware_WrongKeyRejected(t *testing.T) {
	handler := authedHandler("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("X-API-Key", "not-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyMiddleware_ValidKeyAccepted(t *testing.T) {
	handler := authedHandler("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyMiddleware_PublicPathsBypassAuth(t *testing.T) {
	handler := authedHandler("secret")

	paths := []string{"/", "/health", "/health/", "/api/status", "/api/health/webhook"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "path %s should be public", path)
	}
}

func TestAPIKeyMiddleware_OptionsBypassesAuth(t *testing.T) {
	handler := authedHandler("secret")

	req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
