package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockLoginAttempts struct {
	mock.Mock
}

func (m *MockLoginAttempts) Increment(key string, expiration time.Duration) (int64, error) {
	args := m.Called(key, expiration)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoginAttempts) Delete(key string) error {
	return nil
}
