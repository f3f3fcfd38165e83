package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.RateLimitPerMinute, time.Minute))
		}

		r.Get("/profiles", s.handleProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Post("/profiles/{id}/select", s.handleSelectProfile)
		r.Delete("/profiles/{id}", s.handleDeleteProfile)

		r.Get("/birds", s.handleBirds)
		r.Get("/packs", s.handlePacks)
		r.Get("/packs/{token}", s.handlePack)
		r.Get("/stats/schema", s.handleStatsSchema)

		r.Group(func(r chi.Router) {
			r.Use(s.profileMiddleware)
			r.Post("/play", s.handleStartPlay)
			r.Get("/play/{session}", s.handleRound)
			r.Post("/play/{session}/answer", s.handleAnswer)
			r.Post("/play/{session}/next", s.handleNext)
			r.Get("/stats", s.handleStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody("NOT_FOUND", "no such route"))
	})
	return r
}
