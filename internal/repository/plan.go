package repository

import (
	"context"

	"routeplanner/internal/model"
)

// PlanRepository defines data access for stored route plans.
type PlanRepository interface {
	// Create inserts a new route plan record.
	// The caller provides ID and CreatedAt; the stored row is returned.
	Create(ctx context.Context, plan *model.RoutePlan) (*model.RoutePlan, error)

	// FindByID returns a route plan by its ID.
	FindByID(ctx context.Context, id string) (*model.RoutePlan, error)

	// List returns a paginated list of route plans, newest first, and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.RoutePlan], error)
}
