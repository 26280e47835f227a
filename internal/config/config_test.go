// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 3031 {
		t.Errorf("port = %d, want 3031", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Detection.BehaviorWindow != 5*time.Minute {
		t.Errorf("behaviorWindow = %v, want 5m", cfg.Detection.BehaviorWindow)
	}
	if cfg.Detection.HistoryLimit != 1000 {
		t.Errorf("historyLimit = %d, want 1000", cfg.Detection.HistoryLimit)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Security.HostSecret != "" {
		t.Error("host secret must default to empty")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_SERVER_PORT", "8080")
	t.Setenv("SENTINEL_SECURITY_HOST_SECRET", "s3cret")
	t.Setenv("SENTINEL_SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SENTINEL_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Security.HostSecret != "s3cret" {
		t.Errorf("hostSecret = %q", cfg.Security.HostSecret)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("corsOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("corsOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
server:
  port: 4040
security:
  host_secret: from-file
detection:
  history_limit: 500
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 4040 {
		t.Errorf("port = %d, want 4040", cfg.Server.Port)
	}
	if cfg.Security.HostSecret != "from-file" {
		t.Errorf("hostSecret = %q", cfg.Security.HostSecret)
	}
	if cfg.Detection.HistoryLimit != 500 {
		t.Errorf("historyLimit = %d, want 500", cfg.Detection.HistoryLimit)
	}
	// Untouched values keep their defaults.
	if cfg.Detection.BehaviorWindow != 5*time.Minute {
		t.Errorf("behaviorWindow = %v, want default 5m", cfg.Detection.BehaviorWindow)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 4040\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SENTINEL_SERVER_PORT", "5050")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("port = %d, want env override 5050", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"webhook enabled without url", func(c *Config) { c.Detection.WebhookEnabled = true }, true},
		{"webhook enabled with url", func(c *Config) {
			c.Detection.WebhookEnabled = true
			c.Detection.WebhookURL = "https://example.com/hook"
		}, false},
		{"zero history limit", func(c *Config) { c.Detection.HistoryLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SENTINEL_SERVER_PORT", "server.port"},
		{"SENTINEL_SECURITY_HOST_SECRET", "security.host_secret"},
		{"SENTINEL_DETECTION_WEBHOOK_URL", "detection.webhook_url"},
		{"SENTINEL_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
