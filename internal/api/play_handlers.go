package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/birdtalk/internal/errors"
	"github.com/vytor/birdtalk/internal/logger"
)

func (s *Server) handleStartPlay(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	token, err := requestValue(r, "pack")
	if err != nil {
		handleError(w, r, err)
		return
	}

	round, err := s.PlayService.Start(r.Context(), profile.ID, token)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, round)
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	round, err := s.PlayService.Round(r.Context(), profile.ID, chi.URLParam(r, "session"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, round)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	profile := profileFromContext(r.Context())

	raw, err := requestValue(r, "bird_id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	birdID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Warn("invalid bird_id: %q", raw)
		handleError(w, r, errors.NewBadRequestError("invalid bird_id"))
		return
	}

	verdict, err := s.PlayService.Answer(r.Context(), profile.ID, chi.URLParam(r, "session"), birdID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, verdict)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	round, err := s.PlayService.Next(r.Context(), profile.ID, chi.URLParam(r, "session"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, round)
}
