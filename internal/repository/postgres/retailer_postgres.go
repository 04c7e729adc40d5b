package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"routeplanner/internal/model"
	"routeplanner/internal/repository"
)

// RetailerPostgres is a PostgreSQL implementation of repository.RetailerRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RetailerPostgres struct {
	db *sql.DB
}

// NewRetailerPostgres creates a new RetailerPostgres repository.
func NewRetailerPostgres(db *sql.DB) *RetailerPostgres {
	return &RetailerPostgres{db: db}
}

var _ repository.RetailerRepository = (*RetailerPostgres)(nil)

const retailerColumns = `id, outlet, market, distributor, latitude, longitude,
		salesperson_latitude, salesperson_longitude, last_visited, created_at`

// ReplaceAll deletes every retailer row and inserts the given set within one transaction.
func (r *RetailerPostgres) ReplaceAll(ctx context.Context, retailers []model.Retailer) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM retailers`); err != nil {
		return 0, fmt.Errorf("clear retailers: %w", err)
	}

	const q = `
		INSERT INTO retailers (outlet, market, distributor, latitude, longitude,
			salesperson_latitude, salesperson_longitude, last_visited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rt := range retailers {
		if _, err := stmt.ExecContext(ctx,
			rt.Outlet,
			rt.Market,
			rt.Distributor,
			rt.Latitude,
			rt.Longitude,
			rt.SalespersonLatitude,
			rt.SalespersonLongitude,
			rt.LastVisited,
		); err != nil {
			return 0, fmt.Errorf("insert retailer %q: %w", rt.Outlet, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(retailers), nil
}

// FindForPlan fetches retailers matching the market/dealer substring filters,
// oldest visit first with NULL (never visited) rows leading.
func (r *RetailerPostgres) FindForPlan(ctx context.Context, marketTerm, dealerTerm string) ([]model.Retailer, error) {
	const q = `
		SELECT ` + retailerColumns + `
		FROM retailers
		WHERE market ILIKE '%' || $1 || '%'
		  AND distributor ILIKE '%' || $2 || '%'
		ORDER BY last_visited ASC NULLS FIRST, id
	`
	rows, err := r.db.QueryContext(ctx, q, marketTerm, dealerTerm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRetailers(rows)
}

// List returns retailers using LIMIT/OFFSET pagination and a total count.
func (r *RetailerPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Retailer], error) {
	const qCount = `SELECT COUNT(*) FROM retailers`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + retailerColumns + `
		FROM retailers
		ORDER BY market, outlet
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanRetailers(rows)
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Retailer]{
		Items: items,
		Total: total,
	}, nil
}

func scanRetailers(rows *sql.Rows) ([]model.Retailer, error) {
	items := make([]model.Retailer, 0)
	for rows.Next() {
		var (
			rt           model.Retailer
			lat, lon     sql.NullFloat64
			spLat, spLon sql.NullFloat64
			visited      sql.NullTime
		)
		if err := rows.Scan(
			&rt.ID,
			&rt.Outlet,
			&rt.Market,
			&rt.Distributor,
			&lat,
			&lon,
			&spLat,
			&spLon,
			&visited,
			&rt.CreatedAt,
		); err != nil {
			return nil, err
		}
		if lat.Valid {
			rt.Latitude = &lat.Float64
		}
		if lon.Valid {
			rt.Longitude = &lon.Float64
		}
		if spLat.Valid {
			rt.SalespersonLatitude = &spLat.Float64
		}
		if spLon.Valid {
			rt.SalespersonLongitude = &spLon.Float64
		}
		if visited.Valid {
			rt.LastVisited = &visited.Time
		}
		items = append(items, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
