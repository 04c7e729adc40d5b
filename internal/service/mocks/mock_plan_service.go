package mocks

import (
	"context"
	"io"

	"routeplanner/internal/model"
	"routeplanner/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) Plan(ctx context.Context, market, dealer string) (*service.PlanResult, error) {
	args := m.Called(ctx, market, dealer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlanResult), args.Error(1)
}

func (m *MockPlanService) Get(ctx context.Context, id string) (*model.RoutePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoutePlan), args.Error(1)
}

func (m *MockPlanService) List(ctx context.Context, limit, offset int) (*service.PlanListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlanListResult), args.Error(1)
}

func (m *MockPlanService) GetMap(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
