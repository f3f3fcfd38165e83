package jobs

import "github.com/vytor/birdtalk/internal/progress"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueStatsSave(profileID int64, snap progress.Snapshot, version int64) error
}
