package jobs

import (
	"github.com/vytor/birdtalk/internal/progress"
	"github.com/vytor/birdtalk/internal/repository"
	"github.com/vytor/birdtalk/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	statsPool *worker.Pool
	statsRepo repository.StatsRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(statsPool *worker.Pool, statsRepo repository.StatsRepository) JobQueue {
	return &WorkerQueue{
		statsPool: statsPool,
		statsRepo: statsRepo,
	}
}

func (q *WorkerQueue) EnqueueStatsSave(profileID int64, snap progress.Snapshot, version int64) error {
	return q.statsPool.Submit(&worker.SaveStatsJob{
		StatsRepo: q.statsRepo,
		ProfileID: profileID,
		Snapshot:  snap,
		Version:   version,
	})
}
