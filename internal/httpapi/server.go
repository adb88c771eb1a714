// Package httpapi exposes the engine and the stored records over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/engine"
	"github.com/spigell/bidscout/internal/storage"
)

type Server struct {
	engine  *engine.Engine
	store   storage.Store
	metrics *Metrics
	logger  *zap.Logger
}

func New(eng *engine.Engine, store storage.Store, metrics *Metrics, logger *zap.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: eng, store: store, metrics: metrics, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok") })
	r.Get("/readyz", s.ready)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Put("/organizations", s.putOrganization)
		r.Get("/organizations/{id}", s.getOrganization)
		r.Get("/organizations/{id}/naics-matches", s.classificationMatches)
		r.Put("/opportunities", s.putOpportunity)
		r.Get("/opportunities", s.listOpportunities)
		r.Get("/opportunities/stats/summary", s.catalogSummary)
		r.Get("/opportunities/naics/{code}", s.opportunitiesByCode)
		r.Get("/opportunities/{id}", s.getOpportunity)

		r.Route("/scoring", func(r chi.Router) {
			r.Post("/calculate", s.calculateScore)
			r.Post("/batch", s.batchScores)
			r.Get("/organization/{id}", s.listScores)
			r.Get("/{id}", s.getScore)
		})

		r.Route("/risk", func(r chi.Router) {
			r.Post("/assess", s.assessRisk)
			r.Post("/batch", s.batchRisk)
			r.Get("/organization/{id}/summary", s.riskSummary)
			r.Get("/{id}", s.getAssessment)
		})

		r.Route("/win-probability", func(r chi.Router) {
			r.Post("/calculate", s.calculateWinProbability)
			r.Post("/batch", s.batchWinProbability)
		})

		r.Post("/recommendations", s.recommend)
	})
	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("store is not ready", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "NOT_READY", "store is not reachable")
		return
	}
	writeSuccess(w, http.StatusOK, "ready")
}
