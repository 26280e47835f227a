// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

// Package metrics provides Prometheus instrumentation for the detection
// engine and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection engine metrics
	SamplesAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_samples_analyzed_total",
			Help: "Total number of behavior samples analyzed",
		},
		[]string{"behavior_type"},
	)

	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_detections_total",
			Help: "Total number of detections fired",
		},
		[]string{"rule", "severity"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_analysis_duration_seconds",
			Help:    "Duration of a single sample analysis",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	TrackedPlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_tracked_players",
			Help: "Current number of player profiles held in memory",
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket metrics
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_websocket_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)
)

// RecordSampleAnalyzed increments the sample counter for a behavior type.
func RecordSampleAnalyzed(behaviorType string) {
	SamplesAnalyzed.WithLabelValues(behaviorType).Inc()
}

// RecordDetection increments the detection counter for a rule and severity.
func RecordDetection(rule, severity string) {
	DetectionsTotal.WithLabelValues(rule, severity).Inc()
}

// ObserveAnalysis records the duration of one analysis pass.
func ObserveAnalysis(d time.Duration) {
	AnalysisDuration.Observe(d.Seconds())
}

// SetTrackedPlayers updates the profile count gauge.
func SetTrackedPlayers(n int) {
	TrackedPlayers.Set(float64(n))
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// TrackWebSocketClient adjusts the connected client gauge.
func TrackWebSocketClient(connected bool) {
	if connected {
		WebSocketClients.Inc()
	} else {
		WebSocketClients.Dec()
	}
}
