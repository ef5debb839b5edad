package gateway

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jyasuu/ticket-master/internal/observability"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *RateLimiter, ratePerMin int) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl, ratePerMin))
		r.Use(IdempotencyKeyMiddleware)
		r.Post("/v1/events", h.CreateEvent)
		r.Post("/v1/reservations", h.CreateReservation)
	})

	r.Get("/v1/reservations/{id}", h.GetReservation)
	r.Get("/v1/events/{event}/areas/{area}", h.GetAreaStatus)
	r.Get("/v1/healthz", h.Healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
