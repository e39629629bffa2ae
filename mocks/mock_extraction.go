package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cverve/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, data []byte) (*port.ExtractOutput, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractOutput), args.Error(1)
}

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, image []byte, opts port.OCROptions) (string, error) {
	args := m.Called(ctx, image, opts)
	return args.String(0), args.Error(1)
}

// MockImagePreprocessor is a mock implementation of port.ImagePreprocessor.
type MockImagePreprocessor struct {
	mock.Mock
}

func (m *MockImagePreprocessor) Preprocess(data []byte) []byte {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

// MockPageRenderer is a mock implementation of port.PageRenderer.
type MockPageRenderer struct {
	mock.Mock
}

func (m *MockPageRenderer) Render(ctx context.Context, pdf []byte) ([][]byte, error) {
	args := m.Called(ctx, pdf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}
