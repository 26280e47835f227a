// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package detection

// Rule IDs. Adding a rule means adding a table entry and an evaluator;
// dispatch is data-driven, there is no per-rule branching in the engine.
const (
	RuleSpeedHack         = "speed_hack"
	RuleTeleport          = "teleport"
	RuleRapidFire         = "rapid_fire"
	RuleAimbot            = "aimbot"
	RuleGodMode           = "god_mode"
	RuleNoclip            = "noclip"
	RuleMoneyDupe         = "money_dupe"
	RuleResourceInjection = "resource_injection"
)

// defaultRules returns the built-in rule table. Order is significant: rules
// are evaluated, and detections emitted, in table order.
func defaultRules() []*Rule {
	return []*Rule{
		{
			ID:         RuleSpeedHack,
			Name:       "Speed Hack Detection",
			Category:   CategoryMovement,
			Enabled:    true,
			Threshold:  0.85,
			AutoAction: ActionBan,
			Patterns: Patterns{
				"maxSpeed":     100.0, // m/s
				"averageSpeed": 50.0,  // m/s
				"speedSpikes":  3.0,   // per minute
			},
		},
		{
			ID:         RuleTeleport,
			Name:       "Teleport Detection",
			Category:   CategoryMovement,
			Enabled:    true,
			Threshold:  0.90,
			AutoAction: ActionKick,
			Patterns: Patterns{
				"maxDistance": 500.0,  // meters
				"minInterval": 1000.0, // ms
			},
		},
		{
			ID:         RuleRapidFire,
			Name:       "Rapid Fire Detection",
			Category:   CategoryCombat,
			Enabled:    true,
			Threshold:  0.80,
			AutoAction: ActionKick,
			Patterns: Patterns{
				"maxFireRate": 10.0, // shots per second
				"consistency": 0.95,
			},
		},
		{
			ID:         RuleAimbot,
			Name:       "Aimbot Detection",
			Category:   CategoryCombat,
			Enabled:    true,
			Threshold:  0.75,
			AutoAction: ActionWarn,
			Patterns: Patterns{
				"headshot_ratio": 0.90,
				"snap_speed":     0.1, // seconds
				"accuracy":       0.95,
			},
		},
		{
			ID:         RuleGodMode,
			Name:       "God Mode Detection",
			Category:   CategoryCombat,
			Enabled:    true,
			Threshold:  0.98,
			AutoAction: ActionBan,
			Patterns: Patterns{
				"damage_taken": 0.0,
				"shots_taken":  100.0,
				"time_window":  60000.0, // ms
			},
		},
		{
			ID:         RuleNoclip,
			Name:       "Noclip Detection",
			Category:   CategoryMovement,
			Enabled:    true,
			Threshold:  0.95,
			AutoAction: ActionBan,
			Patterns: Patterns{
				"collision_misses": 10.0,
				"vertical_speed":   50.0, // m/s
				"terrain_ignore":   true,
			},
		},
		{
			ID:         RuleMoneyDupe,
			Name:       "Money Duplication Detection",
			Category:   CategoryEconomy,
			Enabled:    true,
			Threshold:  0.95,
			AutoAction: ActionBan,
			Patterns: Patterns{
				"gain_rate":           100000.0, // per minute
				"gain_spikes":         3.0,
				"transaction_pattern": "irregular",
			},
		},
		{
			ID:         RuleResourceInjection,
			Name:       "Resource Injection Detection",
			Category:   CategoryResource,
			Enabled:    true,
			Threshold:  0.99,
			AutoAction: ActionBan,
			Patterns: Patterns{
				"unauthorized_resources": true,
				"injection_detected":     true,
			},
		},
	}
}

// evaluatorFunc is a pure per-rule evaluator: current sample fields in,
// optional finding out. Nil means no evidence of violation. The caller, not
// the evaluator, applies the rule threshold.
type evaluatorFunc func(data DataPoints, patterns Patterns) *Evaluation

// Evaluation is a sub-threshold-agnostic finding produced by an evaluator.
type Evaluation struct {
	Confidence float64
	Evidence   []string
}

// defaultEvaluators returns the evaluator registry keyed by rule ID.
func defaultEvaluators() map[string]evaluatorFunc {
	return map[string]evaluatorFunc{
		RuleSpeedHack:         evaluateSpeedHack,
		RuleTeleport:          evaluateTeleport,
		RuleRapidFire:         evaluateRapidFire,
		RuleAimbot:            evaluateAimbot,
		RuleGodMode:           evaluateGodMode,
		RuleNoclip:            evaluateNoclip,
		RuleMoneyDupe:         evaluateMoneyDupe,
		RuleResourceInjection: evaluateResourceInjection,
	}
}
