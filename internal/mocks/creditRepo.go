package mocks

import (
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCreditRepo struct {
	mock.Mock
}

func (m *MockCreditRepo) ExistsByPhoneNumber(phoneNumber string, tx repository.Tx) (bool, error) {
	args := m.Called(phoneNumber, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditRepo) Insert(credit *models.Credit, tx repository.Tx) (string, error) {
	args := m.Called(credit, tx)
	return args.String(0), args.Error(1)
}
