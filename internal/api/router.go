// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NRGG4B3/ec-sentinel/internal/config"
	"github.com/NRGG4B3/ec-sentinel/internal/middleware"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handlers *Handlers
	chiMW    *ChiMiddleware
	cfg      *config.Config
}

// NewRouter creates a router from config and the handler set.
func NewRouter(cfg *config.Config, handlers *Handlers) *Router {
	return &Router{
		handlers: handlers,
		cfg:      cfg,
		chiMW: NewChiMiddleware(&ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			RateLimitRequests:  cfg.Security.RateLimitReqs,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
		}),
	}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(router.chiMW.CORS())

	// Open endpoints: liveness poll and Prometheus scrape.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMW.RateLimitHealth())
		r.Get("/health", router.handlers.Health)
		r.Handle("/metrics", promhttp.Handler())
	})

	// Detection API: everything behind the shared host secret.
	r.Route("/api/ai-detection", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(chiPathValue)
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.HostSecret(router.cfg.Security.HostSecret)))

		r.Get("/status", router.handlers.Status)
		r.Get("/rules", router.handlers.Rules)
		r.Put("/rules/{ruleId}", router.handlers.UpdateRule)
		r.Post("/analyze", router.handlers.Analyze)
		r.Get("/player/{playerId}", router.handlers.PlayerStats)
		r.Get("/detections", router.handlers.Detections)
		r.Get("/ws", router.handlers.WebSocket)
	})

	return r
}

// chiPathValue injects Chi URL params into the request so handlers can use
// r.PathValue(), bridging chi.URLParam with Go 1.22+'s accessor.
func chiPathValue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				if i < len(rctx.URLParams.Values) {
					r.SetPathValue(key, rctx.URLParams.Values[i])
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
