package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockKeyedLocker is a mock implementation of port.KeyedLocker.
type MockKeyedLocker struct {
	mock.Mock
}

func (m *MockKeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
