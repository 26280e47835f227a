// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

// Package detection implements the behavioral anomaly detection engine.
//
// The engine ingests per-player behavior samples pushed by the game server
// host bridge, evaluates each sample against a fixed table of heuristic
// rules, and produces weighted-confidence detections. Per-player state is a
// rolling five-minute behavior window plus an append-only violation list;
// global state is a bounded ring of the most recent detections.
//
// The engine is deliberately a deterministic, auditable rule engine: given
// the same sample sequence with explicit timestamps it produces the same
// detections, confidences and evidence strings. There is no persistence;
// all state lives in process memory.
//
// Player profiles are created lazily and never evicted (only their behavior
// window is pruned). In long-lived processes with high player churn this
// grows without bound; operators restarting the server between sessions is
// the current mitigation.
package detection
