package pack

import (
	"cloud.google.com/go/civil"

	"github.com/vytor/birdtalk/internal/models"
)

// Pack is the set of birds for one play session.
type Pack struct {
	ID    Identifier
	Name  string
	Birds []models.Bird
	// BirdPackID is the catalog pack the birds came from, nil for ad-hoc packs.
	// Progress is recorded against it regardless of how the pack was selected.
	BirdPackID *uint64
	// Day is set when the catalog pack is a pack of the day.
	Day *civil.Date
}

// FromBirdPack converts a catalog pack. Packs of the day are identified by their day.
func FromBirdPack(bp models.BirdPack) Pack {
	id := ByID(bp.ID)
	if bp.Day != nil {
		id = ByDate(*bp.Day)
	}
	packID := bp.ID
	return Pack{
		ID:         id,
		Name:       bp.Name,
		Birds:      bp.Birds,
		BirdPackID: &packID,
		Day:        bp.Day,
	}
}

// Equal compares catalog pack ids when both sides have one, so a pack fetched
// by id equals the same pack fetched by date.
func (p Pack) Equal(other Pack) bool {
	if p.BirdPackID != nil && other.BirdPackID != nil {
		return *p.BirdPackID == *other.BirdPackID
	}
	return p.ID.Equal(other.ID)
}
