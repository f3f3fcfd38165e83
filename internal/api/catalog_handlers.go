package api

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/vytor/birdtalk/internal/models"
	"github.com/vytor/birdtalk/internal/pack"
)

type packResponse struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Name       string            `json:"name,omitempty"`
	BirdPackID *uint64           `json:"bird_pack_id,omitempty"`
	Day        *civil.Date       `json:"day,omitempty"`
	Birds      []models.BirdView `json:"birds"`
}

func (s *Server) handleBirds(w http.ResponseWriter, r *http.Request) {
	birds, err := s.CatalogService.ListBirds(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.birdViews(birds))
}

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	packs, err := s.CatalogService.ListPacks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if packs == nil {
		packs = []models.BirdPack{}
	}
	writeJSON(w, r, http.StatusOK, packs)
}

// handlePack resolves any pack token, falling back to the pack of the day.
func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	id := pack.Resolve(r.Context(), chi.URLParam(r, "token"), s.Clock.Today())

	p, err := s.CatalogService.FetchPack(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, packResponse{
		ID:         p.ID.String(),
		Kind:       p.ID.Kind().String(),
		Name:       p.Name,
		BirdPackID: p.BirdPackID,
		Day:        p.Day,
		Birds:      s.birdViews(p.Birds),
	})
}

func (s *Server) birdViews(birds []models.Bird) []models.BirdView {
	views := make([]models.BirdView, len(birds))
	for i, b := range birds {
		views[i] = models.NewBirdView(b, s.MediaBaseURL)
	}
	return views
}
