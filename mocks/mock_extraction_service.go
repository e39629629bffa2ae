package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"cverve/internal/domain"
	"cverve/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractText(ctx context.Context, input service.ExtractTextInput) (*service.ExtractTextOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractTextOutput), args.Error(1)
}

// MockBatchRunner is a mock implementation of service.BatchRunner.
type MockBatchRunner struct {
	mock.Mock
}

func (m *MockBatchRunner) Run(ctx context.Context, files []domain.FileInput) *domain.BatchResult {
	args := m.Called(ctx, files)
	return args.Get(0).(*domain.BatchResult)
}

// MockExportService is a mock implementation of service.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportPayments(ctx context.Context, format string, w io.Writer) error {
	args := m.Called(ctx, format, w)
	return args.Error(0)
}
