package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, withLogging)

	router.Get("/healthz", h.healthz)
	router.With(withGZip).Get("/metrics", h.metrics.ServeHTTP)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
