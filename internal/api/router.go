// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Package api exposes the HTTP surface: people, shows, likes,
// air-date lookups and recommendations, all wrapped in a shared JSON
// envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig tunes the middleware around the handlers.
type RouterConfig struct {
	// RateLimitReqs per RateLimitWindow per client IP. Zero disables.
	RateLimitReqs   int
	RateLimitWindow time.Duration

	CORSOrigins []string
}

// NewRouter assembles the route tree.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(RequestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(Instrument)

		r.Post("/people", h.CreatePerson)
		r.Get("/people/{mail}/likes", h.LikedShows)
		r.Get("/people/{mail}/recommendations", h.Recommendations)

		r.Post("/shows", h.CreateShow)
		r.Get("/shows/aired/{date}", h.ShowsAiredOn)

		r.Post("/likes", h.LikeShow)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
