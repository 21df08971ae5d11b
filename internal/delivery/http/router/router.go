package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/image-extractor-service/internal/delivery/http/handler"
	"github.com/user/image-extractor-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/fetch-news-image", h.HandleFetchImage)
		r.Post("/fetch-multiple-news-images", h.HandleFetchMultiple)
		r.Delete("/clear-image-cache", h.HandleClearCache)
		r.Delete("/clear-all-image-cache", h.HandleClearAllCache)
	})

	return r
}
