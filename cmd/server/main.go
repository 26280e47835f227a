// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

// Package main is the entry point for the EC Sentinel server.
//
// EC Sentinel is a behavioral anticheat telemetry service for FiveM game
// servers. The host bridge streams per-player behavior samples to it; the
// engine evaluates them against a fixed table of heuristic rules, maintains
// rolling per-player behavior windows and emits weighted-confidence
// detections with an aggregate risk score. Detections are served over a
// REST API and pushed live to connected dashboards over WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config.yaml and SENTINEL_* env vars (Koanf v2)
//  2. Logging: structured zerolog output, JSON by default
//  3. WebSocket Hub: live detection feed to connected dashboards
//  4. Detection Engine: rule table, per-player profiles, detection history
//  5. Webhook Notifier (optional): outbound detection delivery
//  6. HTTP Server: REST API behind shared-secret auth
//
// # Configuration
//
// A minimal deployment sets only the shared secret:
//
//	export SENTINEL_SECURITY_HOST_SECRET=your-shared-secret
//	./ec-sentinel
//
// Optional webhook delivery:
//
//	export SENTINEL_DETECTION_WEBHOOK_ENABLED=true
//	export SENTINEL_DETECTION_WEBHOOK_URL=https://discord.com/api/webhooks/...
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes the WebSocket hub and connected clients
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NRGG4B3/ec-sentinel/internal/api"
	"github.com/NRGG4B3/ec-sentinel/internal/config"
	"github.com/NRGG4B3/ec-sentinel/internal/detection"
	"github.com/NRGG4B3/ec-sentinel/internal/logging"
	"github.com/NRGG4B3/ec-sentinel/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Security.HostSecret == "" {
		logging.Warn().Msg("host secret not configured; all API requests will be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	hubDone := make(chan error, 1)
	go func() {
		hubDone <- hub.RunWithContext(ctx)
	}()

	engine := detection.NewEngine(detection.Config{
		BehaviorWindow: cfg.Detection.BehaviorWindow,
		HistoryLimit:   cfg.Detection.HistoryLimit,
	}, hub)

	if cfg.Detection.WebhookEnabled {
		engine.RegisterNotifier(detection.NewWebhookNotifier(detection.WebhookConfig{
			WebhookURL: cfg.Detection.WebhookURL,
			Enabled:    true,
		}))
	}

	handlers := api.NewHandlers(engine, hub, cfg)
	router := api.NewRouter(cfg, handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	cancel()
	select {
	case <-hubDone:
	case <-shutdownCtx.Done():
		logging.Warn().Msg("websocket hub did not stop within timeout")
	}

	logging.Info().Msg("server stopped gracefully")
}
