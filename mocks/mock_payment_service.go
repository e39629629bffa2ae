package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cverve/internal/domain"
	"cverve/internal/service"
)

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ProcessPayment(ctx context.Context, input service.ProcessPaymentInput) (*service.ProcessPaymentOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessPaymentOutput), args.Error(1)
}

// MockPaymentLedger is a mock implementation of service.PaymentLedger.
type MockPaymentLedger struct {
	mock.Mock
}

func (m *MockPaymentLedger) RecordPayment(ctx context.Context, rec *domain.PaymentRecord) (float64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(float64), args.Error(1)
}
