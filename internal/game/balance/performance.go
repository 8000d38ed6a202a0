// Package balance scores player performance and power and turns them into
// bounded, smoothed difficulty multipliers.
package balance

import (
	"math"
	"time"
)

// Trend is the direction of recent performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Default analyzer sizes.
const (
	DefaultHistoryCapacity = 10
	DefaultScoreWindow     = 5
)

// NeutralScore is the performance score reported before any wave completes.
const NeutralScore = 0.5

// trendDelta is the score change needed to leave TrendStable.
const trendDelta = 0.1

// Metrics summarizes one completed wave.
type Metrics struct {
	WaveNumber        int
	CompletionTime    time.Duration
	TowersUsed        int
	AverageTowerLevel float64
	DamageDealt       float64
	DamageTaken       float64
	// GoldEfficiency is gold earned over gold available in the wave, in [0, 1].
	GoldEfficiency float64
	// WaveClearSpeed is enemies killed per second.
	WaveClearSpeed float64
	// Score is derived by ScoreMetrics when the wave is recorded.
	Score float64
}

// Sub-score weights; they sum to 1.
const (
	weightCompletion = 0.25
	weightDamage     = 0.20
	weightGold       = 0.15
	weightTower      = 0.20
	weightClear      = 0.20
)

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ScoreMetrics returns the weighted performance score of one wave.
//
// Postcondition: Returns a value in [0, 1].
func ScoreMetrics(m Metrics) float64 {
	wave := float64(m.WaveNumber)

	expected := 30000 + wave*5000
	actual := float64(m.CompletionTime) / float64(time.Millisecond)
	completion := 1.0
	if actual > 0 {
		completion = clamp01(expected / actual)
	}

	damage := 0.0
	if denom := m.DamageDealt + m.DamageTaken*50; denom > 0 {
		damage = clamp01(m.DamageDealt / denom)
	}

	gold := clamp01(m.GoldEfficiency)

	tower := 0.0
	if m.TowersUsed > 0 {
		perTower := m.DamageDealt / float64(m.TowersUsed)
		tower = clamp01(perTower / (1000 + wave*200))
	}

	clearRate := clamp01(m.WaveClearSpeed / (1 + wave*0.1))

	return clamp01(completion*weightCompletion +
		damage*weightDamage +
		gold*weightGold +
		tower*weightTower +
		clearRate*weightClear)
}

// PerformanceStatModifier maps the performance score onto a stat multiplier
// around 1: scores above threshold make enemies tougher, scores below
// 1-threshold make them weaker.
//
// Postcondition: Returns a value in [0.75, 1.25] for thresholds in [0.5, 1].
func PerformanceStatModifier(score, threshold float64) float64 {
	score = clamp01(score)
	switch {
	case score > threshold:
		return 1 + (score-threshold)*0.5
	case score < 1-threshold:
		return 1 - ((1-threshold)-score)*0.5
	}
	return 1
}

// PerformanceAnalyzer keeps a bounded FIFO history of completed waves.
//
// Concurrency: not safe for concurrent use; Manager serializes access.
type PerformanceAnalyzer struct {
	capacity int
	window   int
	history  []Metrics
}

// NewPerformanceAnalyzer creates an analyzer keeping at most capacity waves and
// averaging the last window of them.
//
// Postcondition: capacity and window are at least 1.
func NewPerformanceAnalyzer(capacity, window int) *PerformanceAnalyzer {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	if window < 1 {
		window = DefaultScoreWindow
	}
	return &PerformanceAnalyzer{capacity: capacity, window: window}
}

// RecordWavePerformance scores m, appends it, and evicts the oldest entry beyond capacity.
//
// Postcondition: Len() <= capacity; returns m with Score set.
func (a *PerformanceAnalyzer) RecordWavePerformance(m Metrics) Metrics {
	m.Score = ScoreMetrics(m)
	a.history = append(a.history, m)
	if over := len(a.history) - a.capacity; over > 0 {
		a.history = append(a.history[:0], a.history[over:]...)
	}
	return m
}

// PerformanceScore returns the mean score of the most recent window entries.
//
// Postcondition: Returns NeutralScore for an empty history; otherwise a value in [0, 1].
func (a *PerformanceAnalyzer) PerformanceScore() float64 {
	if len(a.history) == 0 {
		return NeutralScore
	}
	recent := a.history
	if len(recent) > a.window {
		recent = recent[len(recent)-a.window:]
	}
	sum := 0.0
	for _, m := range recent {
		sum += m.Score
	}
	return sum / float64(len(recent))
}

// PerformanceTrend compares the oldest and newest of the last three waves.
func (a *PerformanceAnalyzer) PerformanceTrend() Trend {
	n := len(a.history)
	if n < 3 {
		return TrendStable
	}
	delta := a.history[n-1].Score - a.history[n-3].Score
	switch {
	case delta > trendDelta:
		return TrendImproving
	case delta < -trendDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// History returns a copy of the recorded waves, oldest first.
func (a *PerformanceAnalyzer) History() []Metrics {
	return append([]Metrics(nil), a.history...)
}

// Len returns the number of recorded waves.
func (a *PerformanceAnalyzer) Len() int { return len(a.history) }
