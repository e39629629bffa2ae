package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cverve/internal/port"
)

// MockClaimParser is a mock implementation of port.ClaimParser.
type MockClaimParser struct {
	mock.Mock
}

func (m *MockClaimParser) Parse(ctx context.Context, input port.ClaimInput) (*port.ClaimOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ClaimOutput), args.Error(1)
}
