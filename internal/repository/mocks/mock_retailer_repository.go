package mocks

import (
	"context"

	"routeplanner/internal/model"
	"routeplanner/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockRetailerRepository struct {
	mock.Mock
}

func (m *MockRetailerRepository) ReplaceAll(ctx context.Context, retailers []model.Retailer) (int, error) {
	args := m.Called(ctx, retailers)
	return args.Int(0), args.Error(1)
}

func (m *MockRetailerRepository) FindForPlan(ctx context.Context, marketTerm, dealerTerm string) ([]model.Retailer, error) {
	args := m.Called(ctx, marketTerm, dealerTerm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Retailer), args.Error(1)
}

func (m *MockRetailerRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Retailer], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Retailer]), args.Error(1)
}
