package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter assembles the route tree.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", s.handleListModules)

			r.Route("/{udid}", func(r chi.Router) {
				r.Get("/", s.handleGetModule)
				r.Delete("/cache", s.handleClearCache)

				r.Route("/zones/{zoneID}", func(r chi.Router) {
					r.Post("/temperature", s.handleSetTemperature)
					r.Post("/state", s.handleSetState)
				})
			})
		})
	})

	return r
}
