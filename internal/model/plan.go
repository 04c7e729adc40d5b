package model

import "time"

// Report sources recorded on a stored plan.
const (
	ReportSourceLLM   = "llm"
	ReportSourceLocal = "local"
)

// RoutePlan is a persisted day plan: the ordered stops summarized into a
// report plus the key of the rendered map page in object storage.
type RoutePlan struct {
	ID            string    `json:"id"`
	Market        string    `json:"market"`
	Dealer        string    `json:"dealer"`
	Report        string    `json:"report"`
	ReportSource  string    `json:"report_source"`
	MapKey        string    `json:"-"`
	StopCount     int       `json:"stop_count"`
	TotalKM       float64   `json:"total_km"`
	TravelMinutes float64   `json:"travel_minutes"`
	VisitMinutes  float64   `json:"visit_minutes"`
	BreakMinutes  float64   `json:"break_minutes"`
	TotalMinutes  float64   `json:"total_minutes"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stop is one visited outlet on a planned route, with the leg that reaches it.
type Stop struct {
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	LastVisit     string  `json:"last_visit"`
	LegKM         float64 `json:"leg_km"`
	TravelMinutes float64 `json:"travel_minutes"`
}

// MapPoint is the wire shape for map markers returned to API clients.
// Type is "start" for the salesperson start/end sentinel, "shop" otherwise.
type MapPoint struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type string  `json:"type"`
}
