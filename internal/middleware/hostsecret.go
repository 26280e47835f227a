// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/NRGG4B3/ec-sentinel/internal/logging"
)

// HostSecretHeader carries the shared secret from the game server host
// bridge. Plain equality auth: the transport is assumed to run on a
// private network between the host and this service.
const HostSecretHeader = "X-Host-Secret"

// HostSecret returns middleware that rejects requests whose shared secret
// does not match. A missing server-side secret is a configuration error
// and yields 500 on every protected request; a missing or wrong client
// secret yields 401 with no detail.
func HostSecret(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				logging.Ctx(r.Context()).Error().Msg("host secret not configured")
				writeAuthError(w, http.StatusInternalServerError, "Server configuration error")
				return
			}

			provided := r.Header.Get(HostSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				logging.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("rejected request with invalid host secret")
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next(w, r)
		}
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // headers already sent, nothing left to do
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
