package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_retailers",
		SQL: `CREATE TABLE IF NOT EXISTS retailers (
  id                    UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  outlet                TEXT             NOT NULL,
  market                TEXT             NOT NULL,
  distributor           TEXT             NOT NULL,
  latitude              DOUBLE PRECISION,
  longitude             DOUBLE PRECISION,
  salesperson_latitude  DOUBLE PRECISION,
  salesperson_longitude DOUBLE PRECISION,
  last_visited          DATE,
  created_at            TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_retailers_market",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_retailers_market ON retailers (market);`,
	},
	{
		Name: "create_index_retailers_distributor",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_retailers_distributor ON retailers (distributor);`,
	},
	{
		Name: "create_table_route_plans",
		SQL: `CREATE TABLE IF NOT EXISTS route_plans (
  id             UUID             PRIMARY KEY,
  market         TEXT             NOT NULL,
  dealer         TEXT             NOT NULL,
  report         TEXT             NOT NULL,
  report_source  TEXT             NOT NULL,
  map_key        TEXT             NOT NULL,
  stop_count     INT              NOT NULL CHECK (stop_count >= 0),
  total_km       DOUBLE PRECISION NOT NULL,
  travel_minutes DOUBLE PRECISION NOT NULL,
  visit_minutes  DOUBLE PRECISION NOT NULL,
  break_minutes  DOUBLE PRECISION NOT NULL,
  total_minutes  DOUBLE PRECISION NOT NULL,
  created_at     TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_route_plans_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_route_plans_created_at ON route_plans (created_at);`,
	},
}

// EnsureMigrated checks if the 'retailers' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.retailers') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
