package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/birdtalk/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:               ":8080",
		DBPath:             "test.db",
		LogLevel:           "INFO",
		MediaBaseURL:       "http://localhost/media",
		StatsWorkerCount:   2,
		StatsQueueSize:     64,
		SessionTTL:         time.Hour,
		RateLimitPerMinute: 100,
		DailyPackSize:      12,
		DailyRotationAt:    "00:05",
		ShufflePacks:       true,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_DailyPackSize(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		valid bool
	}{
		{name: "minimum", size: 4, valid: true},
		{name: "default", size: 12, valid: true},
		{name: "zero", size: 0, valid: false},
		{name: "not a multiple of four", size: 10, valid: false},
		{name: "negative", size: -8, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.DailyPackSize = tt.size

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "DAILY_PACK_SIZE")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"DEBUG", "info", "WARN", "WARNING", "ERROR"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		LogLevel:        "INVALID",
		DailyRotationAt: "midnight",
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "STATS_WORKER_COUNT")
	assert.Contains(t, errStr, "STATS_QUEUE_SIZE")
	assert.Contains(t, errStr, "SESSION_TTL")
	assert.Contains(t, errStr, "RATE_LIMIT_PER_MINUTE")
	assert.Contains(t, errStr, "DAILY_PACK_SIZE")
	assert.Contains(t, errStr, "DAILY_ROTATION_AT")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("SHUFFLE_PACKS", "false")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.ShufflePacks)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STATS_WORKER_COUNT", "many")
	t.Setenv("SESSION_TTL", "forever")

	cfg := config.Load()

	assert.Equal(t, 2, cfg.StatsWorkerCount)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}
