package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpay/socialpay-api/internal/domain/admin"
	"github.com/socialpay/socialpay-api/internal/domain/auth"
	"github.com/socialpay/socialpay-api/internal/domain/payment"
	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/task"
	"github.com/socialpay/socialpay-api/internal/domain/transfer"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/domain/withdrawal"
	"github.com/socialpay/socialpay-api/internal/middleware"
	"github.com/socialpay/socialpay-api/internal/pkg/jwt"
)

// testRouter wires handlers with nil services. Requests in these tests never
// get past the middleware, so the services are not reached.
func testRouter(t *testing.T, evidenceDir string) (http.Handler, *jwt.Service) {
	t.Helper()
	tokens := jwt.NewService("router-secret", time.Hour)
	h := handlers{
		auth:       auth.NewHandler(nil),
		user:       user.NewHandler(nil),
		wallet:     wallet.NewHandler(nil),
		referral:   referral.NewHandler(nil),
		payment:    payment.NewHandler(nil),
		task:       task.NewHandler(nil),
		transfer:   transfer.NewHandler(nil),
		withdrawal: withdrawal.NewHandler(nil),
		admin:      admin.NewHandler(nil),
	}
	return newRouter(h, routerOptions{
		jwt:            tokens,
		limiter:        middleware.NewRateLimiter(100, 100),
		allowedOrigins: []string{"http://localhost:3000"},
		evidenceDir:    evidenceDir,
	}), tokens
}

func TestHealth(t *testing.T) {
	router, _ := testRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestUserRoutesRequireToken(t *testing.T) {
	router, _ := testRouter(t, "")

	for _, path := range []string{"/api/v1/wallet", "/api/v1/transfers", "/api/v1/tasks", "/api/v1/payment-details"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, tokens := testRouter(t, "")

	token, err := tokens.GenerateAccessToken(uuid.New(), "user", false)
	require.NoError(t, err)

	for _, path := range []string{"/api/v1/admin/statistics", "/api/v1/admin/users", "/api/v1/admin/submissions/pending"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestBannedTokenIsRefused(t *testing.T) {
	router, tokens := testRouter(t, "")

	token, err := tokens.GenerateAccessToken(uuid.New(), "user", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLocalEvidenceIsServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "submissions"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "submissions", "proof.png"), []byte("png"), 0o644))

	router, _ := testRouter(t, dir)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/evidence/submissions/proof.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
}
