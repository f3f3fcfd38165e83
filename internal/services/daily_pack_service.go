package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/vytor/birdtalk/internal/errors"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/quiz"
	"github.com/vytor/birdtalk/internal/repository"
)

// DailyPackService makes sure every day has a pack of the day
type DailyPackService interface {
	// EnsureDailyPack returns the pack for day, creating it from a random
	// sample of the catalog when missing.
	EnsureDailyPack(ctx context.Context, day civil.Date) (*models.BirdPack, bool, error)
}

type dailyPackService struct {
	birdRepo repository.BirdRepository
	packRepo repository.PackRepository
	size     int
}

// NewDailyPackService creates a new DailyPackService. size is rounded down to
// a multiple of quiz.ChoiceSize.
func NewDailyPackService(birdRepo repository.BirdRepository, packRepo repository.PackRepository, size int) DailyPackService {
	return &dailyPackService{birdRepo: birdRepo, packRepo: packRepo, size: size}
}

func (s *dailyPackService) EnsureDailyPack(ctx context.Context, day civil.Date) (*models.BirdPack, bool, error) {
	log := logger.FromContext(ctx).WithField("day", day.String())

	existing, err := s.packRepo.GetByDay(ctx, day)
	if err != nil {
		log.Error("failed to look up pack of the day: %v", err)
		return nil, false, errors.NewInternalError(err)
	}
	if existing != nil {
		log.Debug("pack of the day already exists: id=%d", existing.ID)
		return existing, false, nil
	}

	ids, err := s.birdRepo.RandomIDs(ctx, s.size)
	if err != nil {
		log.Error("failed to sample birds: %v", err)
		return nil, false, errors.NewInternalError(err)
	}
	n := len(ids) - len(ids)%quiz.ChoiceSize
	if n < quiz.ChoiceSize {
		log.Warn("catalog has only %d birds, cannot build a pack of the day", len(ids))
		return nil, false, errors.NewValidationError("catalog", fmt.Sprintf("needs at least %d birds", quiz.ChoiceSize))
	}

	birds := make([]models.Bird, n)
	for i, id := range ids[:n] {
		birds[i] = models.Bird{ID: id}
	}
	bp := models.BirdPack{
		Name:        fmt.Sprintf("Pack of the day %s", day),
		Description: fmt.Sprintf("%d birds picked for %s", n, day.In(time.UTC).Weekday()),
		Birds:       birds,
		Day:         &day,
	}
	id, err := s.packRepo.Create(ctx, bp)
	if err != nil {
		log.Error("failed to create pack of the day: %v", err)
		return nil, false, errors.NewInternalError(err)
	}
	bp.ID = id
	log.Info("created pack of the day: id=%d, birds=%d", id, n)
	return &bp, true, nil
}
