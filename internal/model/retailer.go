package model

import "time"

// Retailer is one outlet row from the source sheet.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, ingest) without coupling to persistence.
//
// Market and Distributor are stored normalized (trimmed, lowercased) so
// filtering behaves the same regardless of how the sheet was typed.
type Retailer struct {
	ID          string    `json:"id"`
	Outlet      string    `json:"outlet"`
	Market      string    `json:"market"`
	Distributor string    `json:"distributor"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	// Salesperson coordinates mark where the field rep starts the day.
	// Most rows carry none; the planner picks the first prioritized row that does.
	SalespersonLatitude  *float64   `json:"salesperson_latitude,omitempty"`
	SalespersonLongitude *float64   `json:"salesperson_longitude,omitempty"`
	LastVisited          *time.Time `json:"last_visited,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
