package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/birdtalk/internal/models"
)

// MockBirdRepository is a mock implementation of repository.BirdRepository
type MockBirdRepository struct {
	mock.Mock
}

func (m *MockBirdRepository) List(ctx context.Context) ([]models.Bird, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bird), args.Error(1)
}

func (m *MockBirdRepository) GetByIDs(ctx context.Context, ids []uint64) ([]models.Bird, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bird), args.Error(1)
}

func (m *MockBirdRepository) Upsert(ctx context.Context, bird models.Bird) error {
	args := m.Called(ctx, bird)
	return args.Error(0)
}

func (m *MockBirdRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBirdRepository) RandomIDs(ctx context.Context, n int) ([]uint64, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}
