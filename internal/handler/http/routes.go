package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, h.withMetrics, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/ping", h.ping)
		r.Get("/api/version", h.getServerVersion)
		r.Handle("/metrics", h.metrics.handler())
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth, h.withRateLimit)

		r.With(h.pushHashing).Post("/api/sync/push", h.push)
		r.Get("/api/sync/pull", h.pull)
		r.Post("/api/sync/delete", h.delete)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
