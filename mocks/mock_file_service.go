package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billora/internal/service"
)

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, folder string, payload *service.FilePayload) (string, error) {
	args := m.Called(ctx, folder, payload)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockFileService) PresignURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
