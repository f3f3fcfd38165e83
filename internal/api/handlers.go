package api

import (
	"context"

	"github.com/vytor/birdtalk/internal/clock"
	"github.com/vytor/birdtalk/internal/services"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	ProfileService  services.ProfileService
	CatalogService  services.CatalogService
	PlayService     services.PlayService
	ProgressService services.ProgressService
	DB              Pinger
	MediaBaseURL    string
	// RateLimitPerMinute caps requests per client IP on /api; zero disables it.
	RateLimitPerMinute int
	Clock              clock.Clock
}
