package mocks

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/mock"

	"github.com/vytor/birdtalk/internal/models"
)

// MockPackRepository is a mock implementation of repository.PackRepository
type MockPackRepository struct {
	mock.Mock
}

func (m *MockPackRepository) List(ctx context.Context) ([]models.BirdPack, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BirdPack), args.Error(1)
}

func (m *MockPackRepository) GetByID(ctx context.Context, id uint64) (*models.BirdPack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BirdPack), args.Error(1)
}

func (m *MockPackRepository) GetByDay(ctx context.Context, day civil.Date) (*models.BirdPack, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BirdPack), args.Error(1)
}

func (m *MockPackRepository) Create(ctx context.Context, pack models.BirdPack) (uint64, error) {
	args := m.Called(ctx, pack)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockPackRepository) FindByName(ctx context.Context, name string) (*models.BirdPack, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BirdPack), args.Error(1)
}
