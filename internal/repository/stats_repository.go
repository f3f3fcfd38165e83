package repository

import (
	"context"

	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/progress"
)

// StatsRepository stores progress snapshots per profile
type StatsRepository interface {
	Load(ctx context.Context, profileID int64) (*models.UserStats, error)
	// Save stores snap unless a snapshot with the same or a newer version is
	// already stored. It reports whether the row was written.
	Save(ctx context.Context, profileID int64, snap progress.Snapshot, version int64) (bool, error)
}
