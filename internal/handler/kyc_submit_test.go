package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oluseyi/kycflow/internal/context"
	"github.com/oluseyi/kycflow/internal/mocks"
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func submitKycRequest(t *testing.T, phoneNumber, firstName string) *http.Request {
	requestBody, _ := json.Marshal(map[string]string{
		"phone_number": phoneNumber,
		"first_name":   firstName,
	})

	req, err := http.NewRequest("POST", "/submitKycForm", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return context.ContextSetAuthenticatedUser(req, &models.User{
		ID:   "user-1",
		Role: repository.UserRoleUser,
	})
}

func TestHandleSubmitKycForm_PendingAlreadyExists(t *testing.T) {
	mockKycFormRepo := new(mocks.MockKycFormRepo)

	mockKycFormRepo.On("ExistsByPhoneAndStatus", "+2348012345678", repository.KycStatusPending, nil).Return(true, nil)

	kycHandler := &KycHandler{
		KycFormRepo:  mockKycFormRepo,
		ActivityRepo: new(mocks.MockActivityRepo),
		Stream:       mocks.NewMockStream(),
		Helper:       &mocks.MockHelper{},
		ErrHandler:   newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	kycHandler.HandleSubmitKycForm(rr, submitKycRequest(t, "+2348012345678", "Jane"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "You currently have a pending KYC request. Our team is reviewing your information and will respond shortly.")

	mockKycFormRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleSubmitKycForm_ConfirmedIsTerminal(t *testing.T) {
	mockKycFormRepo := new(mocks.MockKycFormRepo)

	mockKycFormRepo.On("ExistsByPhoneAndStatus", "+2348012345678", repository.KycStatusPending, nil).Return(false, nil)
	mockKycFormRepo.On("ExistsByPhoneAndStatus", "+2348012345678", repository.KycStatusConfirmed, nil).Return(true, nil)

	kycHandler := &KycHandler{
		KycFormRepo:  mockKycFormRepo,
		ActivityRepo: new(mocks.MockActivityRepo),
		Stream:       mocks.NewMockStream(),
		Helper:       &mocks.MockHelper{},
		ErrHandler:   newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	kycHandler.HandleSubmitKycForm(rr, submitKycRequest(t, "+2348012345678", "Jane"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Your KYC form has already been confirmed.")

	mockKycFormRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

// A rejected form matches neither the pending nor the confirmed check, so a
// customer whose form was rejected can file a fresh one.
func TestHandleSubmitKycForm_Success(t *testing.T) {
	mockKycFormRepo := new(mocks.MockKycFormRepo)
	mockActivityRepo := new(mocks.MockActivityRepo)
	mockStream := mocks.NewMockStream()

	mockKycFormRepo.On("ExistsByPhoneAndStatus", "+2348012345678", repository.KycStatusPending, nil).Return(false, nil)
	mockKycFormRepo.On("ExistsByPhoneAndStatus", "+2348012345678", repository.KycStatusConfirmed, nil).Return(false, nil)
	mockKycFormRepo.On("Insert", mock.MatchedBy(func(form *models.KycForm) bool {
		return form.PhoneNumber == "+2348012345678" && form.FirstName == "Jane"
	})).Return("form-1", nil)

	mockActivityRepo.On("Insert", mock.MatchedBy(func(entry *models.ActivityLog) bool {
		return entry.Entity == repository.ActivityLogKycFormEntity &&
			entry.Description == KycActivityLogSubmittedDescription &&
			entry.EntityId == "form-1"
	})).Return("activity-1", nil)

	kycHandler := &KycHandler{
		KycFormRepo:  mockKycFormRepo,
		ActivityRepo: mockActivityRepo,
		Stream:       mockStream,
		Helper:       &mocks.MockHelper{},
		ErrHandler:   newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	kycHandler.HandleSubmitKycForm(rr, submitKycRequest(t, "+2348012345678", "Jane"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "KYC form submitted successfully. Our team will review it and respond within 24 hours.")

	require.Len(t, mockStream.Messages[KycSubmittedTopic], 1)

	var event KycEvent
	require.NoError(t, json.Unmarshal([]byte(mockStream.Messages[KycSubmittedTopic][0]), &event))
	require.Equal(t, "+2348012345678", event.PhoneNumber)
	require.Equal(t, "Jane", event.FirstName)

	mockKycFormRepo.AssertExpectations(t)
	mockActivityRepo.AssertExpectations(t)
}

func TestHandleSubmitKycForm_InvalidPhoneNumber(t *testing.T) {
	mockKycFormRepo := new(mocks.MockKycFormRepo)

	kycHandler := &KycHandler{
		KycFormRepo:  mockKycFormRepo,
		ActivityRepo: new(mocks.MockActivityRepo),
		Stream:       mocks.NewMockStream(),
		Helper:       &mocks.MockHelper{},
		ErrHandler:   newTestErrorHandler(),
	}

	rr := httptest.NewRecorder()
	kycHandler.HandleSubmitKycForm(rr, submitKycRequest(t, "not-a-number", "Jane"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Phone number must be in international format")

	mockKycFormRepo.AssertNotCalled(t, "ExistsByPhoneAndStatus", mock.Anything, mock.Anything, mock.Anything)
}
