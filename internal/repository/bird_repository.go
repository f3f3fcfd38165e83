package repository

import (
	"context"

	"github.com/vytor/birdtalk/internal/models"
)

// BirdRepository handles catalog bird data access
type BirdRepository interface {
	List(ctx context.Context) ([]models.Bird, error)
	// GetByIDs returns the known birds among ids in id order; unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []uint64) ([]models.Bird, error)
	Upsert(ctx context.Context, bird models.Bird) error
	Count(ctx context.Context) (int, error)
	RandomIDs(ctx context.Context, n int) ([]uint64, error)
}
