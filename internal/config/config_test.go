package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("PLANNER_AVG_SPEED_KMH", "30.5")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("PLANNER_AVG_SPEED_KMH")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 30.5, cfg.Planner.AvgSpeedKMH)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "APP_HOST", "GEMINI_MODEL",
		"PLANNER_VISIT_MINUTES", "PLANNER_BREAK_MINUTES",
		"PLANNER_AVG_SPEED_KMH", "PLANNER_WORKDAY_MINUTES",
	} {
		orig := os.Getenv(k)
		os.Unsetenv(k)
		defer os.Setenv(k, orig)
	}

	cfg := Load()

	assert.Equal(t, "5004", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 20, cfg.Planner.VisitMinutes)
	assert.Equal(t, 75, cfg.Planner.BreakMinutes)
	assert.Equal(t, 25.0, cfg.Planner.AvgSpeedKMH)
	assert.Equal(t, 540, cfg.Planner.WorkdayMinutes)
}

func TestGetEnvInvalidValues(t *testing.T) {
	os.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")
	os.Setenv("MINIO_USE_SSL", "not-a-bool")
	defer func() {
		os.Unsetenv("DB_MAX_IDLE_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
	}()

	cfg := Load()

	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.False(t, cfg.MinIO.UseSSL)
}
