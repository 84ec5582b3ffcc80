package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oluseyi/kycflow/internal/mocks"
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loginRequest(t *testing.T, email, password string) *http.Request {
	requestBody, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	req, err := http.NewRequest("POST", "/login", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestHandleLogin_ValidCredentials(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockActivityRepo := new(mocks.MockActivityRepo)
	mockLoginAttempts := new(mocks.MockLoginAttempts)

	testUser := &models.User{
		ID:             "123",
		FirstName:      "Jane",
		LastName:       "Doe",
		Email:          "test@example.com",
		PhoneNumber:    "+2348012345678",
		HashedPassword: testPasswordHash,
		Role:           repository.UserRoleUser,
		Status:         repository.UserAccountActiveStatus,
	}

	mockUserRepo.On("GetByEmail", "test@example.com").Return(testUser, true, nil)
	mockActivityRepo.On("Insert", mock.MatchedBy(func(entry *models.ActivityLog) bool {
		return entry.Entity == repository.ActivityLogUserEntity &&
			entry.Description == UserActivityLogLoginDescription &&
			entry.UserID == "123"
	})).Return("activity-1", nil)

	authHandler := &AuthHandler{
		UserRepo:      mockUserRepo,
		ActivityRepo:  mockActivityRepo,
		LoginAttempts: mockLoginAttempts,
		Helper:        &mocks.MockHelper{},
		Mailer:        &mocks.MockMailer{},
		Config:        newTestConfig(),
		ErrHandler:    newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	authHandler.HandleLogin(rr, loginRequest(t, "test@example.com", testPassword))

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	require.Equal(t, "Login successful", response["message"])

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Expected response['data'] to be a map")

	require.NotEmpty(t, data["auth_token"])
	require.NotEmpty(t, data["token_expiry"])

	profile, ok := data["user"].(map[string]interface{})
	require.True(t, ok, "Expected response['data']['user'] to be a map")
	require.Equal(t, "123", profile["id"])
	require.Equal(t, "test@example.com", profile["email"])
	require.Equal(t, "+2348012345678", profile["phone_number"])

	mockUserRepo.AssertExpectations(t)
	mockActivityRepo.AssertExpectations(t)
}

// An unknown email and a wrong password must be indistinguishable to the
// caller, otherwise the endpoint leaks which addresses have accounts.
func TestHandleLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	unknownEmailRepo := new(mocks.MockUserRepo)
	unknownEmailRepo.On("GetByEmail", "ghost@example.com").Return(nil, false, nil)

	unknownEmailHandler := &AuthHandler{
		UserRepo:      unknownEmailRepo,
		ActivityRepo:  new(mocks.MockActivityRepo),
		LoginAttempts: new(mocks.MockLoginAttempts),
		Helper:        &mocks.MockHelper{},
		Mailer:        &mocks.MockMailer{},
		Config:        newTestConfig(),
		ErrHandler:    newTestErrorHandler(),
	}

	unknownEmailResponse := httptest.NewRecorder()
	unknownEmailHandler.HandleLogin(unknownEmailResponse, loginRequest(t, "ghost@example.com", "whatever"))

	wrongPasswordRepo := new(mocks.MockUserRepo)
	wrongPasswordRepo.On("GetByEmail", "test@example.com").Return(&models.User{
		ID:             "123",
		Email:          "test@example.com",
		HashedPassword: testPasswordHash,
		Status:         repository.UserAccountActiveStatus,
	}, true, nil)

	mockLoginAttempts := new(mocks.MockLoginAttempts)
	mockLoginAttempts.On("Increment", "failed_login:123", failedLoginWindow).Return(int64(1), nil)

	mockActivityRepo := new(mocks.MockActivityRepo)
	mockActivityRepo.On("Insert", mock.Anything).Return("activity-1", nil)

	wrongPasswordHandler := &AuthHandler{
		UserRepo:      wrongPasswordRepo,
		ActivityRepo:  mockActivityRepo,
		LoginAttempts: mockLoginAttempts,
		Helper:        &mocks.MockHelper{},
		Mailer:        &mocks.MockMailer{},
		Config:        newTestConfig(),
		ErrHandler:    newTestErrorHandler(),
	}

	wrongPasswordResponse := httptest.NewRecorder()
	wrongPasswordHandler.HandleLogin(wrongPasswordResponse, loginRequest(t, "test@example.com", "notthepassword"))

	require.Equal(t, http.StatusBadRequest, unknownEmailResponse.Code)
	require.Equal(t, http.StatusBadRequest, wrongPasswordResponse.Code)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(unknownEmailResponse.Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(wrongPasswordResponse.Body.Bytes(), &second))

	require.Equal(t, "Incorrect email or password", first["message"])
	require.Equal(t, first["message"], second["message"])
}

func TestHandleLogin_LocksAccountAfterThirdFailure(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)
	mockActivityRepo := new(mocks.MockActivityRepo)
	mockLoginAttempts := new(mocks.MockLoginAttempts)

	mockUserRepo.On("GetByEmail", "test@example.com").Return(&models.User{
		ID:             "123",
		Email:          "test@example.com",
		HashedPassword: testPasswordHash,
		Status:         repository.UserAccountActiveStatus,
	}, true, nil)
	mockUserRepo.On("Lock", "123").Return(nil)

	mockLoginAttempts.On("Increment", "failed_login:123", 15*time.Minute).Return(int64(3), nil)
	mockActivityRepo.On("Insert", mock.Anything).Return("activity-1", nil)

	authHandler := &AuthHandler{
		UserRepo:      mockUserRepo,
		ActivityRepo:  mockActivityRepo,
		LoginAttempts: mockLoginAttempts,
		Helper:        &mocks.MockHelper{},
		Mailer:        &mocks.MockMailer{},
		Config:        newTestConfig(),
		ErrHandler:    newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	authHandler.HandleLogin(rr, loginRequest(t, "test@example.com", "notthepassword"))

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), "Account has been locked. Please contact support")

	mockUserRepo.AssertCalled(t, "Lock", "123")
}

func TestHandleLogin_LockedAccountCannotLogin(t *testing.T) {
	mockUserRepo := new(mocks.MockUserRepo)

	mockUserRepo.On("GetByEmail", "test@example.com").Return(&models.User{
		ID:             "123",
		Email:          "test@example.com",
		HashedPassword: testPasswordHash,
		Status:         repository.UserAccountLockedStatus,
	}, true, nil)

	authHandler := &AuthHandler{
		UserRepo:      mockUserRepo,
		ActivityRepo:  new(mocks.MockActivityRepo),
		LoginAttempts: new(mocks.MockLoginAttempts),
		Helper:        &mocks.MockHelper{},
		Mailer:        &mocks.MockMailer{},
		Config:        newTestConfig(),
		ErrHandler:    newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	authHandler.HandleLogin(rr, loginRequest(t, "test@example.com", testPassword))

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), "Account has been locked. Please contact support")
}
