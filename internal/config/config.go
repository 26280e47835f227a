// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

// Package config loads EC Sentinel configuration with Koanf v2 layered
// sources: built-in defaults, optional YAML config file, environment
// variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Detection DetectionConfig `koanf:"detection"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// SecurityConfig configures API authentication and abuse limits.
type SecurityConfig struct {
	// HostSecret is the shared secret the game server host bridge sends in
	// the X-Host-Secret header. Requests fail with 500 when this is unset
	// server-side; the transport is assumed to run on a private network.
	HostSecret string `koanf:"host_secret"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gt=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DetectionConfig configures the detection engine and its notifier.
type DetectionConfig struct {
	// BehaviorWindow is the per-player rolling sample retention window.
	BehaviorWindow time.Duration `koanf:"behavior_window" validate:"gt=0"`

	// HistoryLimit caps the global detection history ring.
	HistoryLimit int `koanf:"history_limit" validate:"gt=0"`

	// WebhookURL, when set with WebhookEnabled, receives fired detections.
	WebhookURL     string `koanf:"webhook_url" validate:"omitempty,url"`
	WebhookEnabled bool   `koanf:"webhook_enabled"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns a Config with all default values. Defaults are applied
// first, then overridden by config file and env vars.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3031,
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			HostSecret:      "",
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Detection: DetectionConfig{
			BehaviorWindow: 5 * time.Minute,
			HistoryLimit:   1000,
			WebhookURL:     "",
			WebhookEnabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks that the configuration is structurally valid. A missing
// host secret is deliberately not fatal here: the auth middleware rejects
// every protected request with a 500 until one is configured, which
// surfaces the misconfiguration without preventing /health from answering.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Detection.WebhookEnabled && c.Detection.WebhookURL == "" {
		return fmt.Errorf("invalid configuration: detection.webhook_enabled requires detection.webhook_url")
	}
	return nil
}
