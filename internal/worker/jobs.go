package worker

import (
	"context"
	"fmt"

	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/progress"
	"github.com/vytor/birdtalk/internal/repository"
)

// SaveStatsJob writes a progress snapshot. Snapshots that arrive out of order
// are dropped by the store's version check.
type SaveStatsJob struct {
	StatsRepo repository.StatsRepository
	ProfileID int64
	Snapshot  progress.Snapshot
	Version   int64
}

func (j *SaveStatsJob) Name() string { return "save_stats" }

func (j *SaveStatsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"profile_id": j.ProfileID,
		"version":    j.Version,
	})

	saved, err := j.StatsRepo.Save(ctx, j.ProfileID, j.Snapshot, j.Version)
	if err != nil {
		return fmt.Errorf("save stats for profile %d: %w", j.ProfileID, err)
	}
	if !saved {
		log.Debug("newer stats already stored, snapshot dropped")
	}
	return nil
}
