package mocks

import (
	"context"

	"routeplanner/internal/model"
	"routeplanner/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *model.RoutePlan) (*model.RoutePlan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoutePlan), args.Error(1)
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id string) (*model.RoutePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoutePlan), args.Error(1)
}

func (m *MockPlanRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.RoutePlan], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.RoutePlan]), args.Error(1)
}
