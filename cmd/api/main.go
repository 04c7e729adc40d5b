package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routeplanner/internal/config"
	"routeplanner/internal/database"
	"routeplanner/internal/database/migration"
	handlers "routeplanner/internal/http/handler"
	"routeplanner/internal/http/middleware"
	"routeplanner/internal/llm"
	"routeplanner/internal/otel"
	"routeplanner/internal/planner"
	"routeplanner/internal/repository/postgres"
	"routeplanner/internal/service"
	"routeplanner/internal/storage"
	"routeplanner/internal/validation"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local

	ctx := context.Background()

	// Tracing (no-op when OTEL_SDK_DISABLED=true or exporter setup fails)
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// PostgreSQL connection (with pooling via database/sql, traced via otelsql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Gemini report formatter. Without a key the plan service renders reports
	// locally, so the generator stays nil.
	var gen llm.Generator
	if cfg.Gemini.APIKey != "" {
		gen = llm.NewGemini(
			llm.WithAPIKey(cfg.Gemini.APIKey),
			llm.WithModel(cfg.Gemini.Model),
			llm.WithBaseURL(cfg.Gemini.BaseURL),
			llm.WithTimeout(time.Duration(cfg.Gemini.TimeoutSec)*time.Second),
		)
	}

	// Repositories and services
	retailerRepo := postgres.NewRetailerPostgres(db)
	planRepo := postgres.NewPlanPostgres(db)
	planSvc := service.NewPlanService(planner.New(cfg.Planner), gen, objStore, retailerRepo, planRepo)
	datasetSvc := service.NewDatasetService(objStore, retailerRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: request IDs, JSON request logs, traces, metrics
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, planSvc, datasetSvc, validation.NewPlaygroundValidator())

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
