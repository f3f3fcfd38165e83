package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	MediaBaseURL       string
	StatsWorkerCount   int
	StatsQueueSize     int
	SessionTTL         time.Duration
	RateLimitPerMinute int
	DailyPackSize      int
	DailyRotationAt    string
	ShufflePacks       bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:birdtalk.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		MediaBaseURL:       envOr("MEDIA_BASE_URL", "http://127.0.0.1:54321/storage/v1/object/public"),
		StatsWorkerCount:   envIntOr("STATS_WORKER_COUNT", 2),
		StatsQueueSize:     envIntOr("STATS_QUEUE_SIZE", 128),
		SessionTTL:         envDurationOr("SESSION_TTL", 2*time.Hour),
		RateLimitPerMinute: envIntOr("RATE_LIMIT_PER_MINUTE", 300),
		DailyPackSize:      envIntOr("DAILY_PACK_SIZE", 12),
		DailyRotationAt:    envOr("DAILY_ROTATION_AT", "00:05"),
		ShufflePacks:       envBoolOr("SHUFFLE_PACKS", true),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.StatsWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("STATS_WORKER_COUNT must be at least 1 (got %d)", c.StatsWorkerCount))
	}
	if c.StatsQueueSize < 1 {
		errs = append(errs, fmt.Errorf("STATS_QUEUE_SIZE must be at least 1 (got %d)", c.StatsQueueSize))
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be at least 1m (got %s)", c.SessionTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1 (got %d)", c.RateLimitPerMinute))
	}
	// Daily packs are played four birds at a time.
	if c.DailyPackSize < 4 || c.DailyPackSize%4 != 0 {
		errs = append(errs, fmt.Errorf("DAILY_PACK_SIZE must be a positive multiple of 4 (got %d)", c.DailyPackSize))
	}
	if _, err := time.Parse("15:04", c.DailyRotationAt); err != nil {
		errs = append(errs, fmt.Errorf("DAILY_ROTATION_AT must be HH:MM (got %q)", c.DailyRotationAt))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
