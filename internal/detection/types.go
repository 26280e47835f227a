// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package detection

import (
	"math"
	"time"
)

// Category identifies the behavioral domain a rule inspects. A rule only
// evaluates samples whose behaviorType equals its category.
type Category string

const (
	CategoryMovement Category = "movement"
	CategoryCombat   Category = "combat"
	CategoryEconomy  Category = "economy"
	CategoryResource Category = "resource"
)

// AutoAction is the advisory moderation action attached to a rule. The
// engine records it on detections but never enforces it; enforcement is the
// action consumer's job.
type AutoAction string

const (
	ActionWarn AutoAction = "warn"
	ActionKick AutoAction = "kick"
	ActionBan  AutoAction = "ban"
)

// Severity indicates how confident a detection is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityFor derives the severity band from a detection confidence. Bands
// are open at the bottom: a confidence sitting exactly on a boundary falls
// into the band below, so teleport's fixed 0.95 reads as high, not critical.
func severityFor(confidence float64) Severity {
	switch {
	case confidence > 0.95:
		return SeverityCritical
	case confidence > 0.85:
		return SeverityHigh
	case confidence > 0.75:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// StatusDetected is the only detection status this engine assigns. Status
// transitions (reviewed, dismissed, actioned) belong to downstream tooling.
const StatusDetected = "detected"

// Rule is a named heuristic with a confidence threshold and a map of
// numeric/boolean limits specific to the rule.
type Rule struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	Enabled    bool       `json:"enabled"`
	Threshold  float64    `json:"threshold"`
	AutoAction AutoAction `json:"autoAction"`
	Patterns   Patterns   `json:"patterns"`
}

// clone returns a copy safe to hand out across the engine lock.
func (r *Rule) clone() Rule {
	c := *r
	c.Patterns = make(Patterns, len(r.Patterns))
	for k, v := range r.Patterns {
		c.Patterns[k] = v
	}
	return c
}

// RuleUpdate carries a partial rule update. Nil fields are left untouched;
// a non-nil Patterns map replaces the rule's patterns wholesale.
type RuleUpdate struct {
	Name       *string     `json:"name,omitempty"`
	Category   *Category   `json:"category,omitempty" validate:"omitempty,oneof=movement combat economy resource"`
	Enabled    *bool       `json:"enabled,omitempty"`
	Threshold  *float64    `json:"threshold,omitempty" validate:"omitempty,gte=0"`
	AutoAction *AutoAction `json:"autoAction,omitempty" validate:"omitempty,oneof=warn kick ban"`
	Patterns   Patterns    `json:"patterns,omitempty"`
}

// Patterns holds a rule's named limits. Values are numbers, booleans or
// strings depending on the rule.
type Patterns map[string]any

// number returns the named limit as a float64, or NaN if absent or not
// numeric. NaN compares false against everything, so a broken limit simply
// never trips.
func (p Patterns) number(key string) float64 {
	return toNumber(p[key])
}

// boolean returns the named limit as a bool, defaulting to false.
func (p Patterns) boolean(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Detection is an immutable record of one rule firing for one sample.
type Detection struct {
	ID         string     `json:"id"`
	PlayerID   string     `json:"playerId"`
	PlayerName string     `json:"playerName"`
	RuleID     string     `json:"ruleId"`
	RuleName   string     `json:"ruleName"`
	Category   Category   `json:"category"`
	Confidence float64    `json:"confidence"`
	Severity   Severity   `json:"severity"`
	AutoAction AutoAction `json:"autoAction"`
	Evidence   []string   `json:"evidence"`
	Timestamp  time.Time  `json:"timestamp"`
	Status     string     `json:"status"`
}

// BehaviorSample is one telemetry sample for one player.
type BehaviorSample struct {
	PlayerID     string     `json:"playerId" validate:"required"`
	PlayerName   string     `json:"playerName"`
	BehaviorType Category   `json:"behaviorType" validate:"required"`
	DataPoints   DataPoints `json:"dataPoints"`

	// Timestamp of the sample. Zero means "now" at ingest. Explicit
	// timestamps keep replay and backfill deterministic.
	Timestamp time.Time `json:"timestamp"`
}

// DataPoints is the flat field map of a behavior sample. The telemetry
// schema is deliberately not validated: absent fields default, malformed
// fields become NaN and never trip a condition.
type DataPoints map[string]any

// Number returns a numeric field, defaulting to 0 when absent. A present
// but non-numeric value yields NaN.
func (d DataPoints) Number(key string) float64 {
	return d.NumberOr(key, 0)
}

// NumberOr returns a numeric field, defaulting to def when absent.
func (d DataPoints) NumberOr(key string, def float64) float64 {
	v, ok := d[key]
	if !ok {
		return def
	}
	return toNumber(v)
}

// Bool returns a boolean field, defaulting to false.
func (d DataPoints) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// String returns a string field, defaulting to def.
func (d DataPoints) String(key, def string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return def
}

// toNumber coerces JSON and native numeric types. Anything else is NaN.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return math.NaN()
	}
}

// BehaviorEntry is one retained sample in a player's rolling window.
type BehaviorEntry struct {
	Type      Category   `json:"type"`
	Data      DataPoints `json:"data"`
	Timestamp time.Time  `json:"timestamp"`
}

// PlayerProfile is the rolling per-player state. Owned by the engine;
// mutated only under the engine lock.
type PlayerProfile struct {
	PlayerID        string
	PlayerName      string
	FirstSeen       time.Time
	LastActivity    time.Time
	BehaviorHistory []BehaviorEntry
	Violations      []*Detection
	RiskScore       int
	TotalDetections int
}

// PlayerStats is the profile summary returned to callers.
type PlayerStats struct {
	PlayerID         string    `json:"playerId"`
	PlayerName       string    `json:"playerName,omitempty"`
	FirstSeen        time.Time `json:"firstSeen"`
	LastActivity     time.Time `json:"lastActivity"`
	RiskScore        int       `json:"riskScore"`
	TotalDetections  int       `json:"totalDetections"`
	RecentViolations int       `json:"recentViolations"`
	BehaviorSamples  int       `json:"behaviorSamples"`
}

// EngineStats are aggregate counts over the detection history.
type EngineStats struct {
	TotalDetections    int     `json:"totalDetections"`
	DetectionsLastHour int     `json:"detectionsLastHour"`
	DetectionsLast24h  int     `json:"detectionsLast24h"`
	TrackedPlayers     int     `json:"trackedPlayers"`
	ActiveRules        int     `json:"activeRules"`
	AverageConfidence  float64 `json:"averageConfidence"`
	SamplesAnalyzed    int64   `json:"samplesAnalyzed"`
	Status             string  `json:"status"`
}

// AnalysisResult is the outcome of one AnalyzeBehavior call.
type AnalysisResult struct {
	Success    bool         `json:"success"`
	Detections []*Detection `json:"detections"`
	RiskScore  int          `json:"riskScore"`
	Analyzed   bool         `json:"analyzed"`
}
