package mocks

import (
	"github.com/oluseyi/kycflow/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(log *models.ActivityLog) (string, error) {
	args := m.Called(log)
	return args.String(0), args.Error(1)
}
