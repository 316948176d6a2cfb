package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"maestroai/internal/domain"
)

// MockTextService is a mock implementation of service.TextService.
type MockTextService struct {
	mock.Mock
}

func (m *MockTextService) ExtractText(ctx context.Context, screen domain.Screen, query string) (string, error) {
	args := m.Called(ctx, screen, query)
	return args.String(0), args.Error(1)
}
