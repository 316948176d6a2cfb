package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"maestroai/internal/domain"
)

// MockDefectService is a mock implementation of service.DefectService.
type MockDefectService struct {
	mock.Mock
}

func (m *MockDefectService) FindDefects(ctx context.Context, screen domain.Screen, assertion *string) ([]domain.Defect, error) {
	args := m.Called(ctx, screen, assertion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Defect), args.Error(1)
}
