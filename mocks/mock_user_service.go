package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cverve/internal/domain"
	"cverve/internal/service"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, input service.CreateUserInput) (*domain.UserBalance, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserBalance), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, userID string) (*domain.UserBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserBalance), args.Error(1)
}
