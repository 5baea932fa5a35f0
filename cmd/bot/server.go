package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"burningtown/internal/config"
	"burningtown/internal/handlers"
	localMiddleware "burningtown/internal/middleware"
	"burningtown/internal/throttle"
)

// SetupServer creates the status router. limits holds the per-client
// request budgets.
func SetupServer(cfg *config.ServerConfig, h *handlers.Handler, limits *throttle.Keyed) http.Handler {
	r := chi.NewRouter()

	// Chi's built-in middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Our custom middleware
	r.Use(localMiddleware.SecurityHeaders())
	r.Use(localMiddleware.RateLimit(limits))

	// Health check endpoints (no auth required)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Get("/games", h.Games)
	r.Get("/invite.png", h.Invite)

	return r
}
