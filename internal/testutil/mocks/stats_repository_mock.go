package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/progress"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Load(ctx context.Context, profileID int64) (*models.UserStats, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockStatsRepository) Save(ctx context.Context, profileID int64, snap progress.Snapshot, version int64) (bool, error) {
	args := m.Called(ctx, profileID, snap, version)
	return args.Bool(0), args.Error(1)
}
