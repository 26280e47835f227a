// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package detection

import (
	"fmt"
	"strconv"
)

// Confidence weights per tripped sub-condition. Weights are additive within
// a rule and intentionally not normalized; the worst case per rule sums to
// at most 1.0.
const (
	speedHackMaxSpeedWeight = 0.4
	speedHackAvgSpeedWeight = 0.3
	speedHackSpikesWeight   = 0.3

	teleportConfidence = 0.95

	rapidFireRateWeight        = 0.5
	rapidFireConsistencyWeight = 0.4

	aimbotHeadshotWeight = 0.4
	aimbotSnapWeight     = 0.3
	aimbotAccuracyWeight = 0.3

	godModeConfidence = 0.98

	noclipCollisionWeight = 0.4
	noclipVerticalWeight  = 0.3
	noclipTerrainWeight   = 0.3

	moneyDupeRateWeight    = 0.5
	moneyDupeSpikesWeight  = 0.3
	moneyDupePatternWeight = 0.2

	injectionUnauthorizedWeight = 0.5
	injectionSignatureWeight    = 0.5
)

// Defaults for fields whose zero value would be misleading.
const (
	defaultSnapSpeed    = 1.0    // seconds; "slow" unless the producer says otherwise
	defaultTimeInterval = 1000.0 // ms
	defaultTxnPattern   = "normal"
)

// fmtNum renders a metric the way the telemetry sent it: no trailing zeros,
// no forced precision. Keeps evidence strings deterministic.
func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func evaluateSpeedHack(data DataPoints, patterns Patterns) *Evaluation {
	var ev Evaluation

	speed := data.Number("speed")
	if maxSpeed := patterns.number("maxSpeed"); speed > maxSpeed {
		ev.Confidence += speedHackMaxSpeedWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Speed: %s m/s (Max: %s)", fmtNum(speed), fmtNum(maxSpeed)))
	}

	if avg := data.Number("averageSpeed"); avg > patterns.number("averageSpeed") {
		ev.Confidence += speedHackAvgSpeedWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Avg Speed: %s m/s", fmtNum(avg)))
	}

	if spikes := data.Number("speedSpikes"); spikes > patterns.number("speedSpikes") {
		ev.Confidence += speedHackSpikesWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Speed spikes: %s in 1 minute", fmtNum(spikes)))
	}

	if ev.Confidence == 0 {
		return nil
	}
	return &ev
}

// evaluateTeleport is all-or-nothing: a long jump in a short interval is a
// teleport, anything else is clean. No partial credit.
func evaluateTeleport(data DataPoints, patterns Patterns) *Evaluation {
	distance := data.Number("distanceTraveled")
	interval := data.NumberOr("timeInterval", defaultTimeInterval)

	if distance > patterns.number("maxDistance") && interval < patterns.number("minInterval") {
		return &Evaluation{
			Confidence: teleportConfidence,
			Evidence: []string{
				fmt.Sprintf("Traveled %sm in %sms", fmtNum(distance), fmtNum(interval)),
				"Teleport detected",
			},
		}
	}
	return nil
}

func evaluateRapidFire(data DataPoints, patterns Patterns) *Evaluation {
	var ev Evaluation

	fireRate := data.Number("fireRate")
	if maxRate := patterns.number("maxFireRate"); fireRate > maxRate {
		ev.Confidence += rapidFireRateWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Fire rate: %s shots/s (Max: %s)", fmtNum(fireRate), fmtNum(maxRate)))
	}

	if consistency := data.Number("consistency"); consistency > patterns.number("consistency") {
		ev.Confidence += rapidFireConsistencyWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Fire consistency: %s", fmtNum(consistency)))
	}

	if ev.Confidence == 0 {
		return nil
	}
	return &ev
}

func evaluateAimbot(data DataPoints, patterns Patterns) *Evaluation {
	var ev Evaluation

	if ratio := data.Number("headshotRatio"); ratio > patterns.number("headshot_ratio") {
		ev.Confidence += aimbotHeadshotWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Headshot ratio: %s", fmtNum(ratio)))
	}

	// snapSpeed defaults to "slow"; this only trips when the producer
	// explicitly reports an implausibly fast target acquisition.
	if snap := data.NumberOr("snapSpeed", defaultSnapSpeed); snap < patterns.number("snap_speed") {
		ev.Confidence += aimbotSnapWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Snap speed: %ss", fmtNum(snap)))
	}

	if accuracy := data.Number("accuracy"); accuracy > patterns.number("accuracy") {
		ev.Confidence += aimbotAccuracyWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Accuracy: %s", fmtNum(accuracy)))
	}

	if ev.Confidence == 0 {
		return nil
	}
	return &ev
}

// evaluateGodMode requires all three conditions simultaneously: zero damage
// across a sustained window of incoming fire.
func evaluateGodMode(data DataPoints, patterns Patterns) *Evaluation {
	damageTaken := data.Number("damageTaken")
	shotsTaken := data.Number("shotsTaken")
	timeWindow := data.Number("timeWindow")

	if damageTaken == 0 && shotsTaken > patterns.number("shots_taken") && timeWindow >= patterns.number("time_window") {
		return &Evaluation{
			Confidence: godModeConfidence,
			Evidence: []string{
				fmt.Sprintf("No damage taken from %s shots", fmtNum(shotsTaken)),
				fmt.Sprintf("Invulnerability window: %sms", fmtNum(timeWindow)),
			},
		}
	}
	return nil
}

func evaluateNoclip(data DataPoints, patterns Patterns) *Evaluation {
	var ev Evaluation

	if misses := data.Number("collisionMisses"); misses > patterns.number("collision_misses") {
		ev.Confidence += noclipCollisionWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Collision misses: %s", fmtNum(misses)))
	}

	if vertical := data.Number("verticalSpeed"); vertical > patterns.number("vertical_speed") {
		ev.Confidence += noclipVerticalWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Vertical speed: %s m/s", fmtNum(vertical)))
	}

	if data.Bool("terrainIgnore") && patterns.boolean("terrain_ignore") {
		ev.Confidence += noclipTerrainWeight
		ev.Evidence = append(ev.Evidence, "Terrain collision ignored")
	}

	if ev.Confidence == 0 {
		return nil
	}
	return &ev
}

func evaluateMoneyDupe(data DataPoints, patterns Patterns) *Evaluation {
	var ev Evaluation

	if rate := data.Number("gainRate"); rate > patterns.number("gain_rate") {
		ev.Confidence += moneyDupeRateWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Gain rate: $%s/min", fmtNum(rate)))
	}

	if spikes := data.Number("gainSpikes"); spikes > patterns.number("gain_spikes") {
		ev.Confidence += moneyDupeSpikesWeight
		ev.Evidence = append(ev.Evidence, fmt.Sprintf("Gain spikes: %s", fmtNum(spikes)))
	}

	if data.String("transactionPattern", defaultTxnPattern) == "irregular" {
		ev.Confidence += moneyDupePatternWeight
		ev.Evidence = append(ev.Evidence, "Irregular transaction pattern")
	}

	if ev.Confidence == 0 {
		return nil
	}
	return &ev
}

// evaluateResourceInjection needs both flags to clear its 0.99 threshold;
// either alone stays sub-threshold by construction.
func evaluateResourceInjection(data DataPoints, patterns Patterns) *Evaluation {
	var ev Evaluation

	if data.Bool("unauthorizedResources") && patterns.boolean("unauthorized_resources") {
		ev.Confidence += injectionUnauthorizedWeight
		ev.Evidence = append(ev.Evidence, "Unauthorized resource detected")
	}

	if data.Bool("injectionDetected") && patterns.boolean("injection_detected") {
		ev.Confidence += injectionSignatureWeight
		ev.Evidence = append(ev.Evidence, "Injection signature detected")
	}

	if ev.Confidence == 0 {
		return nil
	}
	return &ev
}
