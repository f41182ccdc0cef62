package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		authHeader string
		path       string
		wantStatus int
	}{
		{
			name:       "valid key",
			key:        "secret",
			authHeader: "Bearer secret",
			path:       "/api/v1/accounts",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong key",
			key:        "secret",
			authHeader: "Bearer wrong",
			path:       "/api/v1/accounts",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing header",
			key:        "secret",
			path:       "/api/v1/accounts",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "health is exempt",
			key:        "secret",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "docs are exempt",
			key:        "secret",
			path:       "/docs/openapi.yaml",
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty key disables the check",
			key:        "",
			path:       "/api/v1/accounts",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKey(tt.key, testLogger())(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAPIKey_ErrorBody(t *testing.T) {
	handler := APIKey("secret", testLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/withdraw", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"unauthorized"`)
}

func TestRequestLogger_PreservesStatus(t *testing.T) {
	handler := RequestLogger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
