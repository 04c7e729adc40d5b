package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"routeplanner/internal/config"
	llmMocks "routeplanner/internal/llm/mocks"
	"routeplanner/internal/model"
	"routeplanner/internal/planner"
	"routeplanner/internal/repository"
	repoMocks "routeplanner/internal/repository/mocks"
	"routeplanner/internal/storage"
	storeMocks "routeplanner/internal/storage/mocks"
)

func testPlanner() *planner.Planner {
	return planner.New(config.PlannerConfig{
		VisitMinutes:   20,
		BreakMinutes:   75,
		AvgSpeedKMH:    25,
		WorkdayMinutes: 9 * 60,
	})
}

func fp(v float64) *float64 { return &v }

func testRetailers() []model.Retailer {
	return []model.Retailer{
		{
			Outlet:               "Shop A",
			Market:               "coimbatore",
			Distributor:          "saleem brothers",
			Latitude:             fp(11.01),
			Longitude:            fp(77.01),
			SalespersonLatitude:  fp(11.00),
			SalespersonLongitude: fp(77.00),
		},
		{
			Outlet:      "Shop B",
			Market:      "coimbatore",
			Distributor: "saleem brothers",
			Latitude:    fp(11.02),
			Longitude:   fp(77.02),
		},
	}
}

func TestPlanService_Plan(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		market     string
		dealer     string
		setupMocks func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository)
		wantErr    error
		wantErrMsg string
		checkRes   func(t *testing.T, res *PlanResult)
	}{
		{
			name:   "happy path with llm report",
			market: " Coimbatore ",
			dealer: "Saleem Brothers(CBE)-Rush Order",
			setupMocks: func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository) {
				// filters are normalized and the dealer reduced to its core name
				mRet.On("FindForPlan", ctx, "coimbatore", "saleem brothers").
					Return(testRetailers(), nil)
				mGen.On("Generate", ctx, mock.Anything, mock.Anything).
					Return("llm formatted report", nil)
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, storage.MapPrefix) && strings.HasSuffix(key, ".html")
				}), mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mPlans.On("Create", ctx, mock.MatchedBy(func(p *model.RoutePlan) bool {
					return p.Report == "llm formatted report" &&
						p.ReportSource == model.ReportSourceLLM &&
						p.StopCount == 2 &&
						p.Market == "coimbatore" &&
						p.Dealer == "saleem brothers(cbe)-rush order"
				})).Return(&model.RoutePlan{
					ID:           "plan-1",
					Market:       "coimbatore",
					Dealer:       "saleem brothers(cbe)-rush order",
					Report:       "llm formatted report",
					ReportSource: model.ReportSourceLLM,
				}, nil)
			},
			checkRes: func(t *testing.T, res *PlanResult) {
				assert.Equal(t, "plan-1", res.ID)
				assert.Equal(t, "llm formatted report", res.RoutePlan)
				assert.Equal(t, model.ReportSourceLLM, res.ReportSource)
				assert.Equal(t, "/maps/plan-1", res.MapURL)
				require.Len(t, res.Retailers, 3)
				assert.Equal(t, "start", res.Retailers[0].Type)
			},
		},
		{
			name:   "llm failure falls back to local report",
			market: "coimbatore",
			dealer: "saleem brothers",
			setupMocks: func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository) {
				mRet.On("FindForPlan", ctx, "coimbatore", "saleem brothers").
					Return(testRetailers(), nil)
				mGen.On("Generate", ctx, mock.Anything, mock.Anything).
					Return("", errors.New("quota exceeded"))
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mPlans.On("Create", ctx, mock.MatchedBy(func(p *model.RoutePlan) bool {
					return p.ReportSource == model.ReportSourceLocal &&
						strings.Contains(p.Report, "- Market Name: coimbatore")
				})).Return(&model.RoutePlan{ID: "plan-2", ReportSource: model.ReportSourceLocal}, nil)
			},
			checkRes: func(t *testing.T, res *PlanResult) {
				assert.Equal(t, model.ReportSourceLocal, res.ReportSource)
			},
		},
		{
			name:       "validation - empty market",
			market:     "   ",
			dealer:     "saleem brothers",
			setupMocks: func(*llmMocks.MockGenerator, *storeMocks.MockStorage, *repoMocks.MockRetailerRepository, *repoMocks.MockPlanRepository) {},
			wantErr:    ErrMarketRequired,
		},
		{
			name:       "validation - empty dealer",
			market:     "coimbatore",
			dealer:     "\n ",
			setupMocks: func(*llmMocks.MockGenerator, *storeMocks.MockStorage, *repoMocks.MockRetailerRepository, *repoMocks.MockPlanRepository) {},
			wantErr:    ErrDealerRequired,
		},
		{
			name:   "no matching retailers",
			market: "nowhere",
			dealer: "nobody",
			setupMocks: func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository) {
				mRet.On("FindForPlan", ctx, "nowhere", "nobody").
					Return([]model.Retailer{}, nil)
			},
			wantErr: ErrNoRoute,
		},
		{
			name:   "no start coordinates",
			market: "coimbatore",
			dealer: "saleem brothers",
			setupMocks: func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository) {
				rs := testRetailers()
				rs[0].SalespersonLatitude = nil
				rs[0].SalespersonLongitude = nil
				mRet.On("FindForPlan", ctx, "coimbatore", "saleem brothers").
					Return(rs, nil)
			},
			wantErr: ErrNoRoute,
		},
		{
			name:   "repository error with successful rollback",
			market: "coimbatore",
			dealer: "saleem brothers",
			setupMocks: func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository) {
				mRet.On("FindForPlan", ctx, "coimbatore", "saleem brothers").
					Return(testRetailers(), nil)
				mGen.On("Generate", ctx, mock.Anything, mock.Anything).
					Return("report", nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mPlans.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:   "repository error with failed rollback",
			market: "coimbatore",
			dealer: "saleem brothers",
			setupMocks: func(mGen *llmMocks.MockGenerator, mStore *storeMocks.MockStorage, mRet *repoMocks.MockRetailerRepository, mPlans *repoMocks.MockPlanRepository) {
				mRet.On("FindForPlan", ctx, "coimbatore", "saleem brothers").
					Return(testRetailers(), nil)
				mGen.On("Generate", ctx, mock.Anything, mock.Anything).
					Return("report", nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mPlans.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mGen := new(llmMocks.MockGenerator)
			mStore := new(storeMocks.MockStorage)
			mRet := new(repoMocks.MockRetailerRepository)
			mPlans := new(repoMocks.MockPlanRepository)
			svc := NewPlanService(testPlanner(), mGen, mStore, mRet, mPlans)

			tt.setupMocks(mGen, mStore, mRet, mPlans)

			res, err := svc.Plan(ctx, tt.market, tt.dealer)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, res)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}

			mRet.AssertExpectations(t)
			mPlans.AssertExpectations(t)
		})
	}
}

func TestPlanService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mPlans *repoMocks.MockPlanRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "plan-1",
			setupMocks: func(mPlans *repoMocks.MockPlanRepository) {
				mPlans.On("FindByID", ctx, "plan-1").Return(&model.RoutePlan{ID: "plan-1"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(*repoMocks.MockPlanRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing",
			setupMocks: func(mPlans *repoMocks.MockPlanRepository) {
				mPlans.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mPlans := new(repoMocks.MockPlanRepository)
			svc := NewPlanService(testPlanner(), nil, nil, nil, mPlans)

			tt.setupMocks(mPlans)

			plan, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, plan)
			}
			mPlans.AssertExpectations(t)
		})
	}
}

func TestPlanService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination boundary - zero limit uses default", func(t *testing.T) {
		mPlans := new(repoMocks.MockPlanRepository)
		mPlans.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.RoutePlan]{Items: []model.RoutePlan{}, Total: 0}, nil)

		svc := NewPlanService(testPlanner(), nil, nil, nil, mPlans)
		_, err := svc.List(ctx, 0, -5)
		assert.NoError(t, err)
		mPlans.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mPlans := new(repoMocks.MockPlanRepository)
		mPlans.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		svc := NewPlanService(testPlanner(), nil, nil, nil, mPlans)
		_, err := svc.List(ctx, 10, 0)
		assert.Error(t, err)
	})
}

func TestPlanService_GetMap(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mPlans := new(repoMocks.MockPlanRepository)
		mStore := new(storeMocks.MockStorage)

		mPlans.On("FindByID", ctx, "plan-1").
			Return(&model.RoutePlan{ID: "plan-1", MapKey: "maps/plan-1.html"}, nil)
		mStore.On("Get", ctx, "maps/plan-1.html").
			Return(io.NopCloser(strings.NewReader("<html>")), storage.ObjectInfo{}, nil)

		svc := NewPlanService(testPlanner(), nil, mStore, nil, mPlans)
		rc, err := svc.GetMap(ctx, "plan-1")
		require.NoError(t, err)
		body, _ := io.ReadAll(rc)
		assert.Equal(t, "<html>", string(body))
	})

	t.Run("plan missing", func(t *testing.T) {
		mPlans := new(repoMocks.MockPlanRepository)
		mPlans.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		svc := NewPlanService(testPlanner(), nil, nil, nil, mPlans)
		_, err := svc.GetMap(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
