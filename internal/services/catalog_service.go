package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vytor/birdtalk/internal/errors"
	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/pack"
	"github.com/vytor/birdtalk/internal/quiz"
	"github.com/vytor/birdtalk/internal/repository"
)

// CatalogService reads birds and packs
type CatalogService interface {
	ListBirds(ctx context.Context) ([]models.Bird, error)
	ListPacks(ctx context.Context) ([]models.BirdPack, error)
	// FetchPack loads the birds selected by id. Catalog and daily packs that do
	// not exist are NOT_FOUND; ad-hoc packs skip unknown birds but need at least
	// quiz.ChoiceSize known ones.
	FetchPack(ctx context.Context, id pack.Identifier) (*pack.Pack, error)
}

type catalogService struct {
	birdRepo repository.BirdRepository
	packRepo repository.PackRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(birdRepo repository.BirdRepository, packRepo repository.PackRepository) CatalogService {
	return &catalogService{birdRepo: birdRepo, packRepo: packRepo}
}

func (s *catalogService) ListBirds(ctx context.Context) ([]models.Bird, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing birds")

	birds, err := s.birdRepo.List(ctx)
	if err != nil {
		log.Error("failed to list birds: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return birds, nil
}

func (s *catalogService) ListPacks(ctx context.Context) ([]models.BirdPack, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing packs")

	packs, err := s.packRepo.List(ctx)
	if err != nil {
		log.Error("failed to list packs: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return packs, nil
}

func (s *catalogService) FetchPack(ctx context.Context, id pack.Identifier) (*pack.Pack, error) {
	log := logger.FromContext(ctx).WithField("pack", id.String())
	log.Debug("fetching pack")

	switch id.Kind() {
	case pack.KindID:
		packID, _ := id.ID()
		bp, err := s.packRepo.GetByID(ctx, packID)
		if err != nil {
			log.Error("failed to get pack: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if bp == nil {
			return nil, errors.NewNotFoundError("pack", packID)
		}
		return s.playable(id, *bp)

	case pack.KindDate:
		day, _ := id.Date()
		bp, err := s.packRepo.GetByDay(ctx, day)
		if err != nil {
			log.Error("failed to get pack of the day: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if bp == nil {
			log.Info("no pack of the day for %s", day)
			return nil, &errors.AppError{
				Code:    errors.ErrCodeNotFound,
				Message: fmt.Sprintf("no pack of the day for %s yet, try again later", day),
				Status:  http.StatusNotFound,
			}
		}
		return s.playable(id, *bp)

	default:
		ids, _ := id.Birds()
		birds, err := s.birdRepo.GetByIDs(ctx, ids)
		if err != nil {
			log.Error("failed to get birds: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if len(birds) < len(ids) {
			log.Warn("%d unknown birds dropped from ad-hoc pack", len(ids)-len(birds))
		}
		p := pack.Pack{ID: id, Birds: birds}
		if len(birds) < quiz.ChoiceSize {
			return nil, errors.NewValidationError("pack", fmt.Sprintf("needs at least %d known birds", quiz.ChoiceSize))
		}
		return &p, nil
	}
}

// playable converts a catalog pack, keeping the identifier it was requested by.
func (s *catalogService) playable(id pack.Identifier, bp models.BirdPack) (*pack.Pack, error) {
	if len(bp.Birds) < quiz.ChoiceSize {
		return nil, errors.NewValidationError("pack", fmt.Sprintf("%q has fewer than %d birds", bp.Name, quiz.ChoiceSize))
	}
	p := pack.FromBirdPack(bp)
	p.ID = id
	return &p, nil
}
