package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"routeplanner/internal/service"
	"routeplanner/internal/validation"
)

// planRequest is the JSON body for POST /api/plan_route.
type planRequest struct {
	Market string `json:"market" validate:"required"`
	Dealer string `json:"dealer" validate:"required"`
}

// HealthCheck reports readiness: it checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// PlanRoute computes a daily visit route for a market/dealer pair.
func PlanRoute(planSvc service.PlanService, v validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req planRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if details := v.ValidateStruct(req); details != nil {
			return writeValidationError(c, details)
		}

		res, err := planSvc.Plan(c.UserContext(), req.Market, req.Dealer)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMarketRequired), errors.Is(err, service.ErrDealerRequired):
				return writeValidationError(c, map[string]string{"filter": err.Error()})
			case errors.Is(err, service.ErrNoRoute):
				return writeError(c, fiber.StatusNotFound, "NO_ROUTE", "no retailers matched the given market and dealer")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(res)
	}
}

// ListPlans returns stored plans with limit & offset.
func ListPlans(planSvc service.PlanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}

		res, err := planSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetPlan returns a stored plan by ID.
func GetPlan(planSvc service.PlanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		plan, err := planSvc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "plan not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(plan)
	}
}

// GetMap streams the rendered route map page for a stored plan.
func GetMap(planSvc service.PlanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, err := planSvc.GetMap(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "plan not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Set(fiber.HeaderContentType, "text/html; charset=utf-8")
		return c.SendStream(rc)
	}
}

// UploadDataset replaces the retailer source sheet (multipart/form-data, field name: file).
func UploadDataset(datasetSvc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		res, err := datasetSvc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrInvalidDataset) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DATASET", "dataset could not be parsed")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// DownloadSource redirects to a time-limited URL for the current source sheet.
func DownloadSource(datasetSvc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := datasetSvc.SourceURL(c.UserContext())
		if err != nil {
			if errors.Is(err, service.ErrNoSourceDataset) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no source dataset uploaded")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}

// ListRetailers returns currently loaded retailers with limit & offset.
func ListRetailers(datasetSvc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}

		res, err := datasetSvc.ListRetailers(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// pageParams parses limit/offset query params; on bad input it writes the
// error response and returns it.
func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	limit, convErr := strconv.Atoi(c.Query("limit", "10"))
	if convErr != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, convErr = strconv.Atoi(c.Query("offset", "0"))
	if convErr != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, planSvc service.PlanService, datasetSvc service.DatasetService, v validation.Validator) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/api/plan_route", PlanRoute(planSvc, v))
	app.Get("/plans", ListPlans(planSvc))
	app.Get("/plans/:id", GetPlan(planSvc))
	app.Get("/maps/:id", GetMap(planSvc))

	app.Post("/datasets", UploadDataset(datasetSvc))
	app.Get("/datasets/source", DownloadSource(datasetSvc))
	app.Get("/retailers", ListRetailers(datasetSvc))
}
