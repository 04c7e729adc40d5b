package repository

import (
	"context"

	"routeplanner/internal/model"
)

// RetailerRepository defines data access for retailer rows using SQL queries only.
// No business logic here — strictly persistence operations.
type RetailerRepository interface {
	// ReplaceAll swaps the entire retailer set for the given rows in one
	// transaction and returns the number of rows inserted. The retailer table
	// mirrors a single source sheet, so a new upload replaces everything.
	ReplaceAll(ctx context.Context, retailers []model.Retailer) (int, error)

	// FindForPlan returns retailers whose market contains marketTerm and whose
	// distributor contains dealerTerm (case-insensitive substring match),
	// ordered oldest-visit-first with never-visited rows leading.
	FindForPlan(ctx context.Context, marketTerm, dealerTerm string) ([]model.Retailer, error)

	// List returns a paginated list of retailers and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Retailer], error)
}
