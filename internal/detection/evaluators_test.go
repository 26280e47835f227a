// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package detection

import (
	"math"
	"testing"
)

func patternsFor(t *testing.T, ruleID string) Patterns {
	t.Helper()
	for _, r := range defaultRules() {
		if r.ID == ruleID {
			return r.Patterns
		}
	}
	t.Fatalf("no rule %q in default table", ruleID)
	return nil
}

func TestEvaluateSpeedHackAllConditions(t *testing.T) {
	patterns := patternsFor(t, RuleSpeedHack)

	ev := evaluateSpeedHack(DataPoints{
		"speed":        150.0,
		"averageSpeed": 60.0,
		"speedSpikes":  5.0,
	}, patterns)

	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(ev.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", ev.Confidence)
	}
	if len(ev.Evidence) != 3 {
		t.Fatalf("evidence length = %d, want 3", len(ev.Evidence))
	}

	want := []string{
		"Speed: 150 m/s (Max: 100)",
		"Avg Speed: 60 m/s",
		"Speed spikes: 5 in 1 minute",
	}
	for i, w := range want {
		if ev.Evidence[i] != w {
			t.Errorf("evidence[%d] = %q, want %q", i, ev.Evidence[i], w)
		}
	}
}

func TestEvaluateSpeedHackPartial(t *testing.T) {
	patterns := patternsFor(t, RuleSpeedHack)

	tests := []struct {
		name       string
		data       DataPoints
		confidence float64
	}{
		{"max speed only", DataPoints{"speed": 120.0}, speedHackMaxSpeedWeight},
		{"avg speed only", DataPoints{"averageSpeed": 55.0}, speedHackAvgSpeedWeight},
		{"spikes only", DataPoints{"speedSpikes": 4.0}, speedHackSpikesWeight},
		{"speed and spikes", DataPoints{"speed": 120.0, "speedSpikes": 4.0}, speedHackMaxSpeedWeight + speedHackSpikesWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := evaluateSpeedHack(tt.data, patterns)
			if ev == nil {
				t.Fatal("expected an evaluation")
			}
			if math.Abs(ev.Confidence-tt.confidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", ev.Confidence, tt.confidence)
			}
		})
	}
}

func TestEvaluateSpeedHackClean(t *testing.T) {
	patterns := patternsFor(t, RuleSpeedHack)

	if ev := evaluateSpeedHack(DataPoints{"speed": 30.0, "averageSpeed": 20.0, "speedSpikes": 1.0}, patterns); ev != nil {
		t.Errorf("clean sample produced evaluation with confidence %v", ev.Confidence)
	}
	if ev := evaluateSpeedHack(DataPoints{}, patterns); ev != nil {
		t.Errorf("empty sample produced evaluation with confidence %v", ev.Confidence)
	}
}

func TestEvaluateSpeedHackMalformedField(t *testing.T) {
	patterns := patternsFor(t, RuleSpeedHack)

	// A non-numeric field becomes NaN, compares false and never trips.
	ev := evaluateSpeedHack(DataPoints{"speed": "fast", "speedSpikes": 5.0}, patterns)
	if ev == nil {
		t.Fatal("expected evaluation from the spikes condition")
	}
	if math.Abs(ev.Confidence-speedHackSpikesWeight) > 1e-9 {
		t.Errorf("confidence = %v, want %v (malformed speed must not trip)", ev.Confidence, speedHackSpikesWeight)
	}
}

func TestEvaluateTeleport(t *testing.T) {
	patterns := patternsFor(t, RuleTeleport)

	ev := evaluateTeleport(DataPoints{"distanceTraveled": 600.0, "timeInterval": 500.0}, patterns)
	if ev == nil {
		t.Fatal("expected a teleport evaluation")
	}
	if ev.Confidence != teleportConfidence {
		t.Errorf("confidence = %v, want %v", ev.Confidence, teleportConfidence)
	}
	if len(ev.Evidence) != 2 || ev.Evidence[0] != "Traveled 600m in 500ms" || ev.Evidence[1] != "Teleport detected" {
		t.Errorf("unexpected evidence %v", ev.Evidence)
	}
}

func TestEvaluateTeleportAllOrNothing(t *testing.T) {
	patterns := patternsFor(t, RuleTeleport)

	tests := []struct {
		name string
		data DataPoints
	}{
		{"distance only", DataPoints{"distanceTraveled": 600.0, "timeInterval": 2000.0}},
		{"interval only", DataPoints{"distanceTraveled": 100.0, "timeInterval": 500.0}},
		{"missing interval defaults to 1000ms", DataPoints{"distanceTraveled": 600.0}},
		{"empty", DataPoints{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ev := evaluateTeleport(tt.data, patterns); ev != nil {
				t.Errorf("expected nil, got confidence %v", ev.Confidence)
			}
		})
	}
}

func TestEvaluateRapidFire(t *testing.T) {
	patterns := patternsFor(t, RuleRapidFire)

	ev := evaluateRapidFire(DataPoints{"fireRate": 15.0, "consistency": 0.99}, patterns)
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(ev.Confidence-(rapidFireRateWeight+rapidFireConsistencyWeight)) > 1e-9 {
		t.Errorf("confidence = %v, want %v", ev.Confidence, rapidFireRateWeight+rapidFireConsistencyWeight)
	}
	if ev.Evidence[0] != "Fire rate: 15 shots/s (Max: 10)" {
		t.Errorf("unexpected evidence %q", ev.Evidence[0])
	}
	if ev.Evidence[1] != "Fire consistency: 0.99" {
		t.Errorf("unexpected evidence %q", ev.Evidence[1])
	}
}

func TestEvaluateAimbot(t *testing.T) {
	patterns := patternsFor(t, RuleAimbot)

	ev := evaluateAimbot(DataPoints{"headshotRatio": 0.95, "snapSpeed": 0.05, "accuracy": 0.97}, patterns)
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(ev.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", ev.Confidence)
	}

	want := []string{"Headshot ratio: 0.95", "Snap speed: 0.05s", "Accuracy: 0.97"}
	for i, w := range want {
		if ev.Evidence[i] != w {
			t.Errorf("evidence[%d] = %q, want %q", i, ev.Evidence[i], w)
		}
	}
}

func TestEvaluateAimbotSnapSpeedDefault(t *testing.T) {
	patterns := patternsFor(t, RuleAimbot)

	// A missing snapSpeed defaults to 1s and must not trip the 0.1s limit.
	ev := evaluateAimbot(DataPoints{"headshotRatio": 0.95}, patterns)
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(ev.Confidence-aimbotHeadshotWeight) > 1e-9 {
		t.Errorf("confidence = %v, want %v", ev.Confidence, aimbotHeadshotWeight)
	}
}

func TestEvaluateGodMode(t *testing.T) {
	patterns := patternsFor(t, RuleGodMode)

	ev := evaluateGodMode(DataPoints{"damageTaken": 0.0, "shotsTaken": 150.0, "timeWindow": 60000.0}, patterns)
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if ev.Confidence != godModeConfidence {
		t.Errorf("confidence = %v, want %v", ev.Confidence, godModeConfidence)
	}
	if ev.Evidence[0] != "No damage taken from 150 shots" || ev.Evidence[1] != "Invulnerability window: 60000ms" {
		t.Errorf("unexpected evidence %v", ev.Evidence)
	}
}

func TestEvaluateGodModeRequiresAllConditions(t *testing.T) {
	patterns := patternsFor(t, RuleGodMode)

	tests := []struct {
		name string
		data DataPoints
	}{
		{"took damage", DataPoints{"damageTaken": 5.0, "shotsTaken": 150.0, "timeWindow": 60000.0}},
		{"too few shots", DataPoints{"damageTaken": 0.0, "shotsTaken": 50.0, "timeWindow": 60000.0}},
		{"short window", DataPoints{"damageTaken": 0.0, "shotsTaken": 150.0, "timeWindow": 30000.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ev := evaluateGodMode(tt.data, patterns); ev != nil {
				t.Errorf("expected nil, got confidence %v", ev.Confidence)
			}
		})
	}
}

func TestEvaluateNoclip(t *testing.T) {
	patterns := patternsFor(t, RuleNoclip)

	ev := evaluateNoclip(DataPoints{
		"collisionMisses": 15.0,
		"verticalSpeed":   80.0,
		"terrainIgnore":   true,
	}, patterns)
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(ev.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", ev.Confidence)
	}

	want := []string{"Collision misses: 15", "Vertical speed: 80 m/s", "Terrain collision ignored"}
	for i, w := range want {
		if ev.Evidence[i] != w {
			t.Errorf("evidence[%d] = %q, want %q", i, ev.Evidence[i], w)
		}
	}
}

func TestEvaluateMoneyDupe(t *testing.T) {
	patterns := patternsFor(t, RuleMoneyDupe)

	ev := evaluateMoneyDupe(DataPoints{
		"gainRate":           250000.0,
		"gainSpikes":         5.0,
		"transactionPattern": "irregular",
	}, patterns)
	if ev == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(ev.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", ev.Confidence)
	}
	if ev.Evidence[0] != "Gain rate: $250000/min" {
		t.Errorf("unexpected evidence %q", ev.Evidence[0])
	}
	if ev.Evidence[2] != "Irregular transaction pattern" {
		t.Errorf("unexpected evidence %q", ev.Evidence[2])
	}
}

func TestEvaluateMoneyDupePatternDefault(t *testing.T) {
	patterns := patternsFor(t, RuleMoneyDupe)

	// Missing transactionPattern defaults to "normal" and contributes nothing.
	if ev := evaluateMoneyDupe(DataPoints{"gainRate": 50000.0}, patterns); ev != nil {
		t.Errorf("expected nil, got confidence %v", ev.Confidence)
	}
}

func TestEvaluateResourceInjection(t *testing.T) {
	patterns := patternsFor(t, RuleResourceInjection)

	both := evaluateResourceInjection(DataPoints{
		"unauthorizedResources": true,
		"injectionDetected":     true,
	}, patterns)
	if both == nil {
		t.Fatal("expected an evaluation")
	}
	if math.Abs(both.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", both.Confidence)
	}

	// Either flag alone stays below the 0.99 rule threshold.
	one := evaluateResourceInjection(DataPoints{"unauthorizedResources": true}, patterns)
	if one == nil {
		t.Fatal("expected an evaluation")
	}
	if one.Confidence >= 0.99 {
		t.Errorf("single flag confidence = %v, must stay below the threshold", one.Confidence)
	}

	if ev := evaluateResourceInjection(DataPoints{}, patterns); ev != nil {
		t.Errorf("expected nil, got confidence %v", ev.Confidence)
	}
}

func TestFmtNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150, "150"},
		{0.95, "0.95"},
		{100000, "100000"},
		{0.5, "0.5"},
	}
	for _, tt := range tests {
		if got := fmtNum(tt.in); got != tt.want {
			t.Errorf("fmtNum(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       Severity
	}{
		{1.0, SeverityCritical},
		{0.98, SeverityCritical},
		{0.95, SeverityHigh}, // exactly on the boundary falls into the band below
		{0.9, SeverityHigh},
		{0.85, SeverityMedium},
		{0.8, SeverityMedium},
		{0.75, SeverityLow},
		{0.4, SeverityLow},
	}
	for _, tt := range tests {
		if got := severityFor(tt.confidence); got != tt.want {
			t.Errorf("severityFor(%v) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}
