package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cverve/internal/domain"
)

// MockLedgerRepo is a mock implementation of port.LedgerRepository.
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (float64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockLedgerRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockLedgerRepo) List(ctx context.Context, offset, limit int) ([]domain.PaymentRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PaymentRecord), args.Int(1), args.Error(2)
}
