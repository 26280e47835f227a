// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/NRGG4B3/ec-sentinel/internal/logging"
)

// writeJSON encodes data as JSON and writes it with the given status.
// Encode errors are logged but not surfaced since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes the {success:false, error} envelope the host bridge
// expects. Callers check success rather than relying on status codes, but
// the status is set anyway for curl and middleware.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Error().Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// sanitizeLogValue strips control characters from values that originate in
// requests before they reach the log, preventing log injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
