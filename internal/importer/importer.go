package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/birdtalk/internal/logger"
	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/quiz"
	"github.com/vytor/birdtalk/internal/repository"
)

// Result holds the result of an import operation
type Result struct {
	BirdsUpserted int
	PacksCreated  int
	PacksSkipped  int
	Errors        []string
}

// Importer writes catalogs into the store. Birds are upserted by id and packs
// are created once per name, so running the same import twice is harmless.
type Importer struct {
	birds repository.BirdRepository
	packs repository.PackRepository
}

func New(birds repository.BirdRepository, packs repository.PackRepository) *Importer {
	return &Importer{birds: birds, packs: packs}
}

// Import stores c. Invalid birds and packs are reported in Result.Errors and
// skipped; storage failures abort the import.
func (im *Importer) Import(ctx context.Context, c *Catalog) (*Result, error) {
	log := logger.FromContext(ctx).WithPrefix("importer")
	res := &Result{}

	for _, b := range c.Birds {
		if err := validateBird(b); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("bird %d: %v", b.ID, err))
			continue
		}
		if err := im.birds.Upsert(ctx, b); err != nil {
			return res, fmt.Errorf("failed to store bird %d: %w", b.ID, err)
		}
		res.BirdsUpserted++
	}
	log.Info("imported %d birds", res.BirdsUpserted)

	for _, p := range c.Packs {
		outcome, err := im.importPack(ctx, p)
		if err != nil {
			return res, err
		}
		switch outcome {
		case packCreated:
			res.PacksCreated++
		case packExists:
			res.PacksSkipped++
		case packUnnamed:
			res.Errors = append(res.Errors, "pack without a name")
		case packTooSmall:
			res.Errors = append(res.Errors, fmt.Sprintf("pack %q: needs at least %d known birds", p.Name, quiz.ChoiceSize))
		}
	}
	if res.PacksCreated > 0 || res.PacksSkipped > 0 {
		log.Info("imported packs: created=%d, already present=%d", res.PacksCreated, res.PacksSkipped)
	}
	for _, e := range res.Errors {
		log.Warn("skipped %s", e)
	}
	return res, nil
}

type packOutcome int

const (
	packCreated packOutcome = iota
	packExists
	packUnnamed
	packTooSmall
)

func (im *Importer) importPack(ctx context.Context, p PackEntry) (packOutcome, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return packUnnamed, nil
	}
	existing, err := im.packs.FindByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up pack %q: %w", name, err)
	}
	if existing != nil {
		return packExists, nil
	}

	// Unknown ids are dropped.
	birds, err := im.birds.GetByIDs(ctx, p.Birds)
	if err != nil {
		return 0, fmt.Errorf("failed to load birds of pack %q: %w", name, err)
	}
	if len(birds) < quiz.ChoiceSize {
		return packTooSmall, nil
	}
	if _, err := im.packs.Create(ctx, models.BirdPack{Name: name, Description: p.Description, Birds: birds}); err != nil {
		return 0, fmt.Errorf("failed to create pack %q: %w", name, err)
	}
	return packCreated, nil
}

func validateBird(b models.Bird) error {
	switch {
	case b.ID == 0:
		return fmt.Errorf("id must be positive")
	case strings.TrimSpace(b.CommonName) == "":
		return fmt.Errorf("common name is required")
	case strings.TrimSpace(b.ScientificName) == "":
		return fmt.Errorf("scientific name is required")
	}
	return nil
}
