package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/vytor/birdtalk/internal/progress"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueStatsSave(profileID int64, snap progress.Snapshot, version int64) error {
	args := m.Called(profileID, snap, version)
	return args.Error(0)
}
