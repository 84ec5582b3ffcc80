package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oluseyi/kycflow/internal/config"
	"github.com/oluseyi/kycflow/internal/errHandler"
	"github.com/oluseyi/kycflow/internal/mocks"
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/pascaldekloe/jwt"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test_secret"

func newTestMiddleware(userRepo repository.UserRepository) *Middleware {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := errHandler.New("", nil, logger, nil)

	var cfg config.Config
	cfg.BaseURL = "http://localhost"
	cfg.Jwt.SecretKey = testSecretKey

	return New(handler, logger, userRepo, &cfg)
}

func signedTokenFor(t *testing.T, userID string) string {
	var claims jwt.Claims
	claims.Subject = userID
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(time.Now().Add(time.Hour))
	claims.Issuer = "http://localhost"
	claims.Audiences = []string{"http://localhost"}

	token, err := claims.HMACSign(jwt.HS256, []byte(testSecretKey))
	require.NoError(t, err)

	return string(token)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAdminUser_AdminPasses(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetOne", "admin-1").Return(&models.User{
		ID:     "admin-1",
		Role:   repository.UserRoleAdmin,
		Status: repository.UserAccountActiveStatus,
	}, true, nil)

	mid := newTestMiddleware(mockUserRepo)
	chain := mid.Authenticate(mid.RequireAdminUser(okHandler()))

	req := httptest.NewRequest("POST", "/confirmKycForm", nil)
	req.Header.Set("Authorization", "Bearer "+signedTokenFor(t, "admin-1"))

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	mockUserRepo.AssertExpectations(t)
}

func TestRequireAdminUser_RegularUserForbidden(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("GetOne", "user-1").Return(&models.User{
		ID:     "user-1",
		Role:   repository.UserRoleUser,
		Status: repository.UserAccountActiveStatus,
	}, true, nil)

	mid := newTestMiddleware(mockUserRepo)
	chain := mid.Authenticate(mid.RequireAdminUser(okHandler()))

	req := httptest.NewRequest("POST", "/confirmKycForm", nil)
	req.Header.Set("Authorization", "Bearer "+signedTokenFor(t, "user-1"))

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireAdminUser_MissingTokenUnauthorized(t *testing.T) {
	mid := newTestMiddleware(new(mocks.MockUserRepo))
	chain := mid.Authenticate(mid.RequireAdminUser(okHandler()))

	req := httptest.NewRequest("POST", "/confirmKycForm", nil)

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_BadSignatureRejected(t *testing.T) {
	mid := newTestMiddleware(new(mocks.MockUserRepo))
	chain := mid.Authenticate(mid.RequireAuthenticatedUser(okHandler()))

	var claims jwt.Claims
	claims.Subject = "user-1"
	claims.Expires = jwt.NewNumericTime(time.Now().Add(time.Hour))
	claims.Issuer = "http://localhost"
	claims.Audiences = []string{"http://localhost"}

	token, err := claims.HMACSign(jwt.HS256, []byte("some_other_secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/submitKycForm", nil)
	req.Header.Set("Authorization", "Bearer "+string(token))

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
