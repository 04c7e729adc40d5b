package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"routeplanner/internal/llm"
	"routeplanner/internal/maps"
	"routeplanner/internal/model"
	"routeplanner/internal/planner"
	"routeplanner/internal/report"
	"routeplanner/internal/repository"
	"routeplanner/internal/storage"
)

var (
	ErrMarketRequired = errors.New("market is required")
	ErrDealerRequired = errors.New("dealer is required")
	ErrNoRoute        = errors.New("no route could be generated")
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("plan not found")
)

// PlanResult is the service-level DTO returned for a freshly planned route.
type PlanResult struct {
	ID           string           `json:"id"`
	Market       string           `json:"market"`
	Dealer       string           `json:"dealer"`
	RoutePlan    string           `json:"route_plan"`
	ReportSource string           `json:"report_source"`
	MapURL       string           `json:"map_url"`
	Retailers    []model.MapPoint `json:"retailers"`
}

// PlanListResult is the service-level DTO for paginated stored plans.
type PlanListResult struct {
	Items []model.RoutePlan `json:"data"`
	Total int               `json:"total"`
}

// PlanService defines the use cases around route plans.
type PlanService interface {
	// Plan computes a route for the market/dealer pair, formats the report,
	// stores the rendered map, persists the plan, and returns the full result.
	Plan(ctx context.Context, market, dealer string) (*PlanResult, error)

	// Get returns a stored plan by its ID.
	Get(ctx context.Context, id string) (*model.RoutePlan, error)

	// List returns stored plans using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*PlanListResult, error)

	// GetMap streams the rendered map page for a stored plan.
	GetMap(ctx context.Context, id string) (io.ReadCloser, error)
}

// planService is a concrete implementation of PlanService.
type planService struct {
	planner   *planner.Planner
	gen       llm.Generator
	store     storage.Storage
	retailers repository.RetailerRepository
	plans     repository.PlanRepository
}

// NewPlanService constructs a new PlanService.
func NewPlanService(
	p *planner.Planner,
	gen llm.Generator,
	store storage.Storage,
	retailers repository.RetailerRepository,
	plans repository.PlanRepository,
) PlanService {
	return &planService{
		planner:   p,
		gen:       gen,
		store:     store,
		retailers: retailers,
		plans:     plans,
	}
}

func (s *planService) Plan(ctx context.Context, market, dealer string) (*PlanResult, error) {
	market = planner.NormalizeFilter(market)
	dealer = planner.NormalizeFilter(dealer)
	if market == "" {
		return nil, ErrMarketRequired
	}
	if dealer == "" {
		return nil, ErrDealerRequired
	}

	candidates, err := s.retailers.FindForPlan(ctx, market, planner.DealerSearchTerm(dealer))
	if err != nil {
		return nil, fmt.Errorf("find retailers: %w", err)
	}

	route, err := s.planner.Plan(candidates)
	if err != nil {
		if errors.Is(err, planner.ErrNoRetailers) || errors.Is(err, planner.ErrNoStartPoint) {
			return nil, fmt.Errorf("%w: %w", ErrNoRoute, err)
		}
		return nil, err
	}

	// The LLM only reformats pre-computed data; any failure falls back to the
	// deterministic renderer so a plan is always produced.
	reportText, reportSource := s.formatReport(ctx, market, dealer, route)

	id := uuid.New().String()
	mapKey := storage.MapPrefix + id + ".html"

	var page bytes.Buffer
	if err := maps.Render(&page, market, dealer, route); err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	if _, err := s.store.Put(ctx, mapKey, bytes.NewReader(page.Bytes()), storage.PutObjectOptions{
		Size:        int64(page.Len()),
		ContentType: "text/html; charset=utf-8",
	}); err != nil {
		return nil, fmt.Errorf("store map: %w", err)
	}

	plan := &model.RoutePlan{
		ID:            id,
		Market:        market,
		Dealer:        dealer,
		Report:        reportText,
		ReportSource:  reportSource,
		MapKey:        mapKey,
		StopCount:     len(route.Stops),
		TotalKM:       route.TotalKM,
		TravelMinutes: route.TravelMinutes,
		VisitMinutes:  route.VisitMinutes,
		BreakMinutes:  route.BreakMinutes,
		TotalMinutes:  route.TotalMinutes,
		CreatedAt:     time.Now().UTC(),
	}
	stored, err := s.plans.Create(ctx, plan)
	if err != nil {
		// Rollback: delete the map object from storage
		if delErr := s.store.Delete(ctx, mapKey); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	return &PlanResult{
		ID:           stored.ID,
		Market:       stored.Market,
		Dealer:       stored.Dealer,
		RoutePlan:    stored.Report,
		ReportSource: stored.ReportSource,
		MapURL:       "/maps/" + stored.ID,
		Retailers:    maps.Points(route),
	}, nil
}

func (s *planService) formatReport(ctx context.Context, market, dealer string, route *planner.Route) (string, string) {
	if s.gen != nil {
		text, err := s.gen.Generate(ctx, report.SystemPrompt, report.BuildUserPrompt(market, dealer, route))
		if err == nil {
			return text, model.ReportSourceLLM
		}
	}
	return report.Render(market, dealer, route), model.ReportSourceLocal
}

// Get returns a plan by ID.
func (s *planService) Get(ctx context.Context, id string) (*model.RoutePlan, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

// List returns paginated plans without exposing repository types.
func (s *planService) List(ctx context.Context, limit, offset int) (*PlanListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.plans.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PlanListResult{Items: res.Items, Total: res.Total}, nil
}

// GetMap looks up the plan and streams its stored map page.
func (s *planService) GetMap(ctx context.Context, id string) (io.ReadCloser, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rc, _, err := s.store.Get(ctx, plan.MapKey)
	if err != nil {
		return nil, fmt.Errorf("get map object: %w", err)
	}
	return rc, nil
}
