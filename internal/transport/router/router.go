package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/middleware"
	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/transport/handler"
)

// NewRouter mounts the routes. rl may be nil when rate limiting is disabled;
// the caller owns the limiter's lifecycle.
func NewRouter(h *handler.Handler, rl *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	if rl != nil {
		r.Use(rl.Limit)
	}

	r.Get("/compress", h.Compress)
	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
