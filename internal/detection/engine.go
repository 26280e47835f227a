// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package detection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NRGG4B3/ec-sentinel/internal/logging"
	"github.com/NRGG4B3/ec-sentinel/internal/metrics"
)

// ErrRuleNotFound is returned by UpdateRule for an unknown rule ID.
var ErrRuleNotFound = errors.New("rule not found")

const (
	// defaultBehaviorWindow bounds each player's retained sample history.
	defaultBehaviorWindow = 5 * time.Minute

	// defaultHistoryLimit caps the global detection ring.
	defaultHistoryLimit = 1000

	// riskRecentWindow is the lookback for the recent-violation term of the
	// risk score.
	riskRecentWindow = time.Hour

	// defaultRecentLimit is the page size for RecentDetections.
	defaultRecentLimit = 50
)

// Broadcaster pushes fired detections to connected dashboard clients.
type Broadcaster interface {
	BroadcastJSON(messageType string, data interface{})
}

// Notifier delivers fired detections to an external channel (webhook etc).
type Notifier interface {
	Send(ctx context.Context, d *Detection) error
	Name() string
	Enabled() bool
}

// Config configures the detection engine.
type Config struct {
	// BehaviorWindow is how long per-player samples are retained.
	BehaviorWindow time.Duration

	// HistoryLimit caps the global detection history ring.
	HistoryLimit int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BehaviorWindow: defaultBehaviorWindow,
		HistoryLimit:   defaultHistoryLimit,
	}
}

// Engine owns the rule table, per-player profiles and the detection history.
// One instance is constructed at process start and injected into the HTTP
// layer; all mutating and reading operations serialize on a single mutex.
// Nothing inside the lock blocks on I/O.
type Engine struct {
	mu         sync.Mutex
	rules      []*Rule
	ruleIndex  map[string]*Rule
	evaluators map[string]evaluatorFunc
	profiles   map[string]*PlayerProfile
	history    []*Detection

	behaviorWindow time.Duration
	historyLimit   int

	notifiers   []Notifier
	broadcaster Broadcaster

	samplesAnalyzed int64

	// now is the evaluation-time clock, injectable for tests. Sample
	// timestamps, not this clock, drive window pruning.
	now func() time.Time
}

// NewEngine creates a detection engine with the built-in rule table.
// broadcaster may be nil.
func NewEngine(cfg Config, broadcaster Broadcaster) *Engine {
	if cfg.BehaviorWindow <= 0 {
		cfg.BehaviorWindow = defaultBehaviorWindow
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	rules := defaultRules()
	index := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		index[r.ID] = r
	}

	return &Engine{
		rules:          rules,
		ruleIndex:      index,
		evaluators:     defaultEvaluators(),
		profiles:       make(map[string]*PlayerProfile),
		behaviorWindow: cfg.BehaviorWindow,
		historyLimit:   cfg.HistoryLimit,
		broadcaster:    broadcaster,
		now:            time.Now,
	}
}

// RegisterNotifier adds a notifier to the engine.
func (e *Engine) RegisterNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notifiers = append(e.notifiers, n)
	logging.Info().Str("notifier", n.Name()).Msg("registered notifier")
}

// AnalyzeBehavior ingests one behavior sample, updates the player's rolling
// window and evaluates every enabled rule whose category matches the
// sample's behaviorType. Rules are independent: each may fire its own
// detection on the same sample.
func (e *Engine) AnalyzeBehavior(sample BehaviorSample) *AnalysisResult {
	start := time.Now()

	ts := sample.Timestamp
	if ts.IsZero() {
		ts = e.now()
	}

	e.mu.Lock()

	profile := e.getOrCreateProfile(sample.PlayerID, sample.PlayerName, ts)
	profile.LastActivity = ts
	if sample.PlayerName != "" {
		profile.PlayerName = sample.PlayerName
	}

	profile.BehaviorHistory = append(profile.BehaviorHistory, BehaviorEntry{
		Type:      sample.BehaviorType,
		Data:      sample.DataPoints,
		Timestamp: ts,
	})
	e.pruneBehaviorHistory(profile, ts)

	fired := make([]*Detection, 0)
	for _, rule := range e.rules {
		if !rule.Enabled || rule.Category != sample.BehaviorType {
			continue
		}
		eval, ok := e.evaluators[rule.ID]
		if !ok {
			continue
		}
		result := eval(sample.DataPoints, rule.Patterns)
		if result == nil || result.Confidence <= 0 || result.Confidence < rule.Threshold {
			continue
		}

		d := &Detection{
			ID:         uuid.New().String(),
			PlayerID:   sample.PlayerID,
			PlayerName: profile.PlayerName,
			RuleID:     rule.ID,
			RuleName:   rule.Name,
			Category:   rule.Category,
			Confidence: result.Confidence,
			Severity:   severityFor(result.Confidence),
			AutoAction: rule.AutoAction,
			Evidence:   result.Evidence,
			Timestamp:  ts,
			Status:     StatusDetected,
		}

		profile.Violations = append(profile.Violations, d)
		profile.TotalDetections++
		profile.RiskScore = e.riskScore(profile)
		e.appendHistory(d)
		fired = append(fired, d)

		metrics.RecordDetection(d.RuleID, string(d.Severity))
	}

	e.samplesAnalyzed++
	riskScore := profile.RiskScore
	trackedPlayers := len(e.profiles)

	e.mu.Unlock()

	metrics.RecordSampleAnalyzed(string(sample.BehaviorType))
	metrics.SetTrackedPlayers(trackedPlayers)
	metrics.ObserveAnalysis(time.Since(start))

	if len(fired) > 0 {
		logging.Info().
			Str("player_id", sample.PlayerID).
			Int("detections", len(fired)).
			Int("risk_score", riskScore).
			Msg("detections fired")
		e.notify(fired)
		e.broadcast(fired)
	}

	return &AnalysisResult{
		Success:    true,
		Detections: fired,
		RiskScore:  riskScore,
		Analyzed:   true,
	}
}

// getOrCreateProfile is the single lazy-create primitive: every path that
// reads a profile, including the read-only-sounding PlayerStats, creates it
// through here. Caller must hold the lock.
func (e *Engine) getOrCreateProfile(playerID, playerName string, ts time.Time) *PlayerProfile {
	if p, ok := e.profiles[playerID]; ok {
		return p
	}
	p := &PlayerProfile{
		PlayerID:        playerID,
		PlayerName:      playerName,
		FirstSeen:       ts,
		LastActivity:    ts,
		BehaviorHistory: make([]BehaviorEntry, 0),
		Violations:      make([]*Detection, 0),
	}
	e.profiles[playerID] = p
	return p
}

// pruneBehaviorHistory drops entries older than the behavior window. The
// reference point is the current sample's timestamp, not wall clock, so
// replayed or backfilled telemetry prunes consistently.
func (e *Engine) pruneBehaviorHistory(p *PlayerProfile, ref time.Time) {
	cutoff := ref.Add(-e.behaviorWindow)
	keep := p.BehaviorHistory[:0]
	for _, entry := range p.BehaviorHistory {
		if entry.Timestamp.After(cutoff) {
			keep = append(keep, entry)
		}
	}
	p.BehaviorHistory = keep
}

// appendHistory adds a detection to the global ring, evicting oldest first
// beyond the cap. Caller must hold the lock.
func (e *Engine) appendHistory(d *Detection) {
	e.history = append(e.history, d)
	if excess := len(e.history) - e.historyLimit; excess > 0 {
		e.history = append(e.history[:0], e.history[excess:]...)
	}
}

// riskScore recomputes a profile's risk from scratch: 10 points per lifetime
// detection plus 20 per violation in the last hour, clamped to [0, 100].
// O(violations) per call, which is fine at single-server player counts.
func (e *Engine) riskScore(p *PlayerProfile) int {
	cutoff := e.now().Add(-riskRecentWindow)
	recent := 0
	for _, v := range p.Violations {
		if v.Timestamp.After(cutoff) {
			recent++
		}
	}
	score := p.TotalDetections*10 + recent*20
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// notify fans fired detections out to enabled notifiers without blocking
// the caller.
func (e *Engine) notify(fired []*Detection) {
	e.mu.Lock()
	notifiers := make([]Notifier, 0, len(e.notifiers))
	for _, n := range e.notifiers {
		if n.Enabled() {
			notifiers = append(notifiers, n)
		}
	}
	e.mu.Unlock()

	for _, d := range fired {
		for _, n := range notifiers {
			go func(n Notifier, d *Detection) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := n.Send(ctx, d); err != nil {
					logging.Error().Err(err).Str("notifier", n.Name()).Msg("failed to send detection")
				}
			}(n, d)
		}
	}
}

// broadcast pushes fired detections to the dashboard feed.
func (e *Engine) broadcast(fired []*Detection) {
	if e.broadcaster == nil {
		return
	}
	for _, d := range fired {
		e.broadcaster.BroadcastJSON("detection", d)
	}
}

// PlayerStats returns the profile summary for a player. Reading an unseen
// player creates an empty profile; see getOrCreateProfile.
func (e *Engine) PlayerStats(playerID string) PlayerStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.getOrCreateProfile(playerID, "", e.now())

	cutoff := e.now().Add(-riskRecentWindow)
	recent := 0
	for _, v := range p.Violations {
		if v.Timestamp.After(cutoff) {
			recent++
		}
	}

	return PlayerStats{
		PlayerID:         p.PlayerID,
		PlayerName:       p.PlayerName,
		FirstSeen:        p.FirstSeen,
		LastActivity:     p.LastActivity,
		RiskScore:        p.RiskScore,
		TotalDetections:  p.TotalDetections,
		RecentViolations: recent,
		BehaviorSamples:  len(p.BehaviorHistory),
	}
}

// Stats returns aggregate counts over the detection history.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	hourCutoff := now.Add(-time.Hour)
	dayCutoff := now.Add(-24 * time.Hour)

	lastHour, last24h := 0, 0
	confidenceSum := 0.0
	for _, d := range e.history {
		if d.Timestamp.After(hourCutoff) {
			lastHour++
		}
		if d.Timestamp.After(dayCutoff) {
			last24h++
		}
		confidenceSum += d.Confidence
	}

	avgConfidence := 0.0
	if len(e.history) > 0 {
		avgConfidence = confidenceSum / float64(len(e.history))
	}

	activeRules := 0
	for _, r := range e.rules {
		if r.Enabled {
			activeRules++
		}
	}

	return EngineStats{
		TotalDetections:    len(e.history),
		DetectionsLastHour: lastHour,
		DetectionsLast24h:  last24h,
		TrackedPlayers:     len(e.profiles),
		ActiveRules:        activeRules,
		AverageConfidence:  avgConfidence,
		SamplesAnalyzed:    e.samplesAnalyzed,
		Status:             "operational",
	}
}

// Rules returns a copy of the rule table in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.Lock()
	defer e.mu.Unlock()

	rules := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		rules = append(rules, r.clone())
	}
	return rules
}

// UpdateRule applies a partial update to a rule. Unset fields keep their
// value; a provided patterns map replaces the rule's patterns. Rules are
// never deleted. Returns ErrRuleNotFound for an unknown ID.
func (e *Engine) UpdateRule(ruleID string, update RuleUpdate) (*Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rule, ok := e.ruleIndex[ruleID]
	if !ok {
		return nil, ErrRuleNotFound
	}

	if update.Name != nil {
		rule.Name = *update.Name
	}
	if update.Category != nil {
		rule.Category = *update.Category
	}
	if update.Enabled != nil {
		rule.Enabled = *update.Enabled
	}
	if update.Threshold != nil {
		rule.Threshold = *update.Threshold
	}
	if update.AutoAction != nil {
		rule.AutoAction = *update.AutoAction
	}
	if update.Patterns != nil {
		rule.Patterns = update.Patterns
	}

	logging.Info().Str("rule", ruleID).Msg("rule updated")

	updated := rule.clone()
	return &updated, nil
}

// RecentDetections returns the most recent limit detections, newest first.
// limit <= 0 means the default page size; the cap is the history limit.
func (e *Engine) RecentDetections(limit int) []*Detection {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > len(e.history) {
		limit = len(e.history)
	}

	out := make([]*Detection, 0, limit)
	for i := len(e.history) - 1; i >= len(e.history)-limit; i-- {
		out = append(out, e.history[i])
	}
	return out
}
