package mocks

import (
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockKycFormRepo struct {
	mock.Mock
}

func (m *MockKycFormRepo) ExistsByPhoneAndStatus(phoneNumber, status string, tx repository.Tx) (bool, error) {
	args := m.Called(phoneNumber, status, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockKycFormRepo) Insert(form *models.KycForm) (string, error) {
	args := m.Called(form)
	return args.String(0), args.Error(1)
}

func (m *MockKycFormRepo) UpdateStatusIfPending(phoneNumber, status string, tx repository.Tx) (string, bool, error) {
	args := m.Called(phoneNumber, status, tx)
	return args.String(0), args.Bool(1), args.Error(2)
}
