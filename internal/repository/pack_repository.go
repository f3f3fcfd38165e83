package repository

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/vytor/birdtalk/internal/models"
)

// PackRepository handles bird pack data access
type PackRepository interface {
	// List returns packs without their birds.
	List(ctx context.Context) ([]models.BirdPack, error)
	GetByID(ctx context.Context, id uint64) (*models.BirdPack, error)
	GetByDay(ctx context.Context, day civil.Date) (*models.BirdPack, error)
	// Create inserts the pack and links pack.Birds in order. Only bird ids are used.
	Create(ctx context.Context, pack models.BirdPack) (uint64, error)
	FindByName(ctx context.Context, name string) (*models.BirdPack, error)
}
