package models

import (
	"time"

	"github.com/vytor/birdtalk/internal/progress"
)

// UserStats is a stored progress snapshot. Version only grows; a save with a
// version not above the stored one is ignored.
type UserStats struct {
	ProfileID int64             `json:"profile_id"`
	Snapshot  progress.Snapshot `json:"snapshot"`
	Version   int64             `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
}
