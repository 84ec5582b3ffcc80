package mocks

import (
	"context"
	"database/sql"

	"github.com/oluseyi/kycflow/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

type MockTxBeginner struct {
	mock.Mock
}

func (m *MockTxBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (repository.Tx, error) {
	args := m.Called(ctx, opts)
	tx, _ := args.Get(0).(repository.Tx)
	return tx, args.Error(1)
}
