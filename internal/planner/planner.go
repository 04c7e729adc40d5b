// Package planner turns a filtered set of retailers into a single-day visit
// route: oldest-visited shops first, greedy nearest-neighbor ordering, bounded
// by the working minutes left after breaks.
package planner

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"routeplanner/internal/config"
	"routeplanner/internal/geo"
	"routeplanner/internal/model"
)

var (
	ErrNoRetailers  = errors.New("no retailers with usable coordinates")
	ErrNoStartPoint = errors.New("no salesperson start coordinates found")
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeFilter collapses whitespace runs to single spaces, trims, and
// lowercases. Sheet exports regularly carry hidden newlines and double spaces
// inside names; filtering must not care.
func NormalizeFilter(s string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " ")))
}

// DealerSearchTerm reduces a dealer name to its core: everything before the
// first "(" or "-". "saleem brothers(cbe)-rush order" matches on
// "saleem brothers".
func DealerSearchTerm(dealer string) string {
	if i := strings.IndexAny(dealer, "(-"); i >= 0 {
		dealer = dealer[:i]
	}
	return strings.TrimSpace(dealer)
}

// Route is a planned workday: the start/end coordinates, ordered stops, and
// the time/distance totals for the whole day.
type Route struct {
	StartLat float64
	StartLon float64
	Stops    []model.Stop

	TotalKM       float64
	TravelMinutes float64
	VisitMinutes  float64
	BreakMinutes  float64
	TotalMinutes  float64
}

// Planner computes day routes using fixed workday accounting.
type Planner struct {
	cfg config.PlannerConfig
}

func New(cfg config.PlannerConfig) *Planner {
	return &Planner{cfg: cfg}
}

// candidate is a retailer flattened to the fields routing needs.
type candidate struct {
	name      string
	lat, lon  float64
	lastVisit string
}

// Plan builds the route for the given retailers. The slice is expected to be
// pre-filtered by market/dealer; Plan handles prioritization, deduplication,
// start point selection, and ordering.
func (p *Planner) Plan(retailers []model.Retailer) (*Route, error) {
	prioritized := prioritize(retailers)
	if len(prioritized) == 0 {
		return nil, ErrNoRetailers
	}

	// The start point comes from the highest-priority row that carries
	// salesperson coordinates, so the day begins wherever the rep was last known.
	var startLat, startLon float64
	found := false
	for _, r := range prioritized {
		if r.SalespersonLatitude != nil && r.SalespersonLongitude != nil {
			startLat, startLon = *r.SalespersonLatitude, *r.SalespersonLongitude
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNoStartPoint
	}

	cands := make([]candidate, 0, len(prioritized))
	for _, r := range prioritized {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		cands = append(cands, candidate{
			name:      r.Outlet,
			lat:       *r.Latitude,
			lon:       *r.Longitude,
			lastVisit: lastVisitLabel(r),
		})
	}
	if len(cands) == 0 {
		return nil, ErrNoRetailers
	}

	route := &Route{
		StartLat:     startLat,
		StartLon:     startLon,
		BreakMinutes: float64(p.cfg.BreakMinutes),
	}
	p.walk(route, cands)

	route.VisitMinutes = float64(len(route.Stops) * p.cfg.VisitMinutes)
	route.TotalMinutes = route.TravelMinutes + route.VisitMinutes + route.BreakMinutes
	return route, nil
}

// walk runs the nearest-neighbor loop, appending stops until the next one
// would overrun the available working minutes.
func (p *Planner) walk(route *Route, unvisited []candidate) {
	available := float64(p.cfg.WorkdayMinutes - p.cfg.BreakMinutes)
	curLat, curLon := route.StartLat, route.StartLon
	used := 0.0

	for len(unvisited) > 0 && used < available {
		best := 0
		bestDist := geo.Haversine(curLat, curLon, unvisited[0].lat, unvisited[0].lon)
		for i := 1; i < len(unvisited); i++ {
			d := geo.Haversine(curLat, curLon, unvisited[i].lat, unvisited[i].lon)
			if d < bestDist {
				best, bestDist = i, d
			}
		}

		travel := bestDist / p.cfg.AvgSpeedKMH * 60
		cost := travel + float64(p.cfg.VisitMinutes)
		if used+cost > available {
			break
		}
		used += cost

		next := unvisited[best]
		route.Stops = append(route.Stops, model.Stop{
			Name:          next.name,
			Lat:           next.lat,
			Lon:           next.lon,
			LastVisit:     next.lastVisit,
			LegKM:         bestDist,
			TravelMinutes: travel,
		})
		route.TotalKM += bestDist
		route.TravelMinutes += travel

		curLat, curLon = next.lat, next.lon
		unvisited = append(unvisited[:best], unvisited[best+1:]...)
	}
}

// prioritize orders retailers oldest-visit-first with never-visited rows at
// the front, then keeps a single highest-priority row per outlet name.
func prioritize(retailers []model.Retailer) []model.Retailer {
	sorted := make([]model.Retailer, len(retailers))
	copy(sorted, retailers)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].LastVisited, sorted[j].LastVisited
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]
	for _, r := range sorted {
		if _, dup := seen[r.Outlet]; dup {
			continue
		}
		seen[r.Outlet] = struct{}{}
		out = append(out, r)
	}
	return out
}

func lastVisitLabel(r model.Retailer) string {
	if r.LastVisited == nil {
		return "Never"
	}
	return r.LastVisited.Format("2006-01-02")
}
