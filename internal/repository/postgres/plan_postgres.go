package postgres

import (
	"context"
	"database/sql"

	"routeplanner/internal/model"
	"routeplanner/internal/repository"
)

// PlanPostgres is a PostgreSQL implementation of repository.PlanRepository.
type PlanPostgres struct {
	db *sql.DB
}

// NewPlanPostgres creates a new PlanPostgres repository.
func NewPlanPostgres(db *sql.DB) *PlanPostgres {
	return &PlanPostgres{db: db}
}

var _ repository.PlanRepository = (*PlanPostgres)(nil)

const planColumns = `id, market, dealer, report, report_source, map_key, stop_count,
		total_km, travel_minutes, visit_minutes, break_minutes, total_minutes, created_at`

// Create inserts a new route plan row and returns the stored record.
func (r *PlanPostgres) Create(ctx context.Context, plan *model.RoutePlan) (*model.RoutePlan, error) {
	const q = `
		INSERT INTO route_plans (id, market, dealer, report, report_source, map_key,
			stop_count, total_km, travel_minutes, visit_minutes, break_minutes, total_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + planColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		plan.ID,
		plan.Market,
		plan.Dealer,
		plan.Report,
		plan.ReportSource,
		plan.MapKey,
		plan.StopCount,
		plan.TotalKM,
		plan.TravelMinutes,
		plan.VisitMinutes,
		plan.BreakMinutes,
		plan.TotalMinutes,
		plan.CreatedAt,
	)
	return scanPlan(row)
}

// FindByID fetches a single route plan by its ID.
func (r *PlanPostgres) FindByID(ctx context.Context, id string) (*model.RoutePlan, error) {
	const q = `
		SELECT ` + planColumns + `
		FROM route_plans
		WHERE id = $1
	`
	return scanPlan(r.db.QueryRowContext(ctx, q, id))
}

// List returns route plans using LIMIT/OFFSET pagination and a total count.
func (r *PlanPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.RoutePlan], error) {
	const qCount = `SELECT COUNT(*) FROM route_plans`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + planColumns + `
		FROM route_plans
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RoutePlan, 0)
	for rows.Next() {
		var p model.RoutePlan
		if err := rows.Scan(
			&p.ID,
			&p.Market,
			&p.Dealer,
			&p.Report,
			&p.ReportSource,
			&p.MapKey,
			&p.StopCount,
			&p.TotalKM,
			&p.TravelMinutes,
			&p.VisitMinutes,
			&p.BreakMinutes,
			&p.TotalMinutes,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.RoutePlan]{
		Items: items,
		Total: total,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*model.RoutePlan, error) {
	var p model.RoutePlan
	if err := row.Scan(
		&p.ID,
		&p.Market,
		&p.Dealer,
		&p.Report,
		&p.ReportSource,
		&p.MapKey,
		&p.StopCount,
		&p.TotalKM,
		&p.TravelMinutes,
		&p.VisitMinutes,
		&p.BreakMinutes,
		&p.TotalMinutes,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
