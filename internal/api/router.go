// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SivanLackrif/shmali/internal/config"
	"github.com/SivanLackrif/shmali/internal/middleware"
)

// chiAdapter adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be used with r.Use().
func chiAdapter(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter wires all routes and middleware.
func NewRouter(handler *Handler, cfg config.APIConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(chiAdapter(middleware.RequestID)) // X-Request-ID header and logging context
	r.Use(chimiddleware.RealIP)             // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)          // Recover from panics
	// CORS must be global so OPTIONS preflight requests are answered
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints: permissive rate limit for monitoring
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, cfg.RateLimitWindow))
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	// Conversation endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(chiAdapter(middleware.PrometheusMetrics))
		r.Post("/turn", handler.Turn)
		r.Post("/reset", handler.Reset)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	return r
}
