// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/NRGG4B3/ec-sentinel/internal/config"
	"github.com/NRGG4B3/ec-sentinel/internal/detection"
	"github.com/NRGG4B3/ec-sentinel/internal/logging"
	"github.com/NRGG4B3/ec-sentinel/internal/websocket"
)

// Handlers provides HTTP handlers for the detection service endpoints.
type Handlers struct {
	engine   *detection.Engine
	hub      *websocket.Hub
	cfg      *config.Config
	validate *validator.Validate
}

// NewHandlers creates the handler set. hub may be nil when the live feed is
// not wired, e.g. in tests.
func NewHandlers(engine *detection.Engine, hub *websocket.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		engine:   engine,
		hub:      hub,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// Health handles GET /health. Open endpoint for the host bridge's liveness
// poll.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "operational",
		"port":    h.cfg.Server.Port,
	})
}

// statusResponse flattens engine stats into the success envelope.
type statusResponse struct {
	Success bool `json:"success"`
	detection.EngineStats
}

// Status handles GET /api/ai-detection/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Success:     true,
		EngineStats: h.engine.Stats(),
	})
}

// Rules handles GET /api/ai-detection/rules.
func (h *Handlers) Rules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"rules":   h.engine.Rules(),
	})
}

// UpdateRule handles PUT /api/ai-detection/rules/{ruleId}. Unknown rule IDs
// come back as {success:false, error:"Rule not found"}; callers check
// success rather than catching anything.
func (h *Handlers) UpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID := r.PathValue("ruleId")

	var update detection.RuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validate.Struct(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid rule update", err)
		return
	}

	rule, err := h.engine.UpdateRule(ruleID, update)
	if err != nil {
		if errors.Is(err, detection.ErrRuleNotFound) {
			respondError(w, http.StatusNotFound, "Rule not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update rule", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"rule":    rule,
	})
}

// analyzeRequest is the wire form of one behavior sample. Timestamp is
// either epoch milliseconds or an RFC 3339 string; dataPoints is passed
// through unvalidated, malformed fields simply never trip a rule.
type analyzeRequest struct {
	PlayerID     string               `json:"playerId" validate:"required"`
	PlayerName   string               `json:"playerName"`
	BehaviorType string               `json:"behaviorType" validate:"required"`
	DataPoints   detection.DataPoints `json:"dataPoints"`
	Timestamp    interface{}          `json:"timestamp"`
}

// parseTimestamp accepts epoch milliseconds (the FiveM bridge's native
// format) or RFC 3339. Anything else yields the zero time, which the engine
// treats as "now".
func parseTimestamp(v interface{}) time.Time {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(t))
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}

// Analyze handles POST /api/ai-detection/analyze.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "playerId and behaviorType are required", err)
		return
	}

	result := h.engine.AnalyzeBehavior(detection.BehaviorSample{
		PlayerID:     req.PlayerID,
		PlayerName:   req.PlayerName,
		BehaviorType: detection.Category(req.BehaviorType),
		DataPoints:   req.DataPoints,
		Timestamp:    parseTimestamp(req.Timestamp),
	})

	writeJSON(w, http.StatusOK, result)
}

// PlayerStats handles GET /api/ai-detection/player/{playerId}. Unknown
// players return a zeroed stats object, never 404.
func (h *Handlers) PlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerId")
	if playerID == "" {
		respondError(w, http.StatusBadRequest, "Player ID required", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   h.engine.PlayerStats(playerID),
	})
}

// Detections handles GET /api/ai-detection/detections?limit=N.
func (h *Handlers) Detections(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"detections": h.engine.RecentDetections(limit),
	})
}

// WebSocket handles GET /api/ai-detection/ws, upgrading to the live
// detection feed.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Live feed not available", nil)
		return
	}

	upgrader := gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}

// checkWebSocketOrigin validates the Origin header against the configured
// CORS origins. An absent Origin is allowed: the host bridge and CLI tools
// are not browsers, and the endpoint already sits behind secret auth.
func (h *Handlers) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}
