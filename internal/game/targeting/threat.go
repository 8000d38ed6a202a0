// Package targeting scores enemies by threat and selects one target per tower.
package targeting

import (
	"math"
	"time"

	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

// Assessment is the threat evaluation of one enemy relative to one tower.
// It is recomputed on every evaluation and never stored.
type Assessment struct {
	Enemy *enemy.Enemy
	// Score is the composite threat score. It is not normalized; only the
	// ordering between candidates is meaningful.
	Score float64
	// Distance is the Euclidean distance between enemy and tower.
	Distance float64
	// TimeToReach is the time the enemy needs to cover Distance; +Inf when it does not move.
	TimeToReach time.Duration
	// TimeToReachMs is TimeToReach in float milliseconds; +Inf when the enemy does not move.
	TimeToReachMs float64
	// DamageCapacity is the enemy's damage scaled by its remaining health fraction.
	DamageCapacity float64
	// SurvivalTimeMs is the time the tower needs to kill the enemy; +Inf when the tower deals no damage.
	SurvivalTimeMs float64
	// EvaluatedAt is the time the assessment was made.
	EvaluatedAt time.Time
}

// typeBonus is the flat threat bonus per enemy type.
var typeBonus = map[enemy.Type]float64{
	enemy.TypeTank:  35,
	enemy.TypeScout: 20,
	enemy.TypeGhost: 30,
}

const (
	specialBonus       = 40.0
	urgentWindowMs     = 5000.0
	urgentBonus        = 50.0
	approachWindowMs   = 10000.0
	approachBonus      = 25.0
	proximityBase      = 100.0
	proximityFalloff   = 10.0
	healthWeight       = 30.0
	speedWeight        = 20.0
	speedNormalizer    = 100.0
	offenseWeight      = 25.0
	offenseNormalizer  = 20.0
	maxRepresentableMs = float64(math.MaxInt64 / int64(time.Millisecond))
)

// Score evaluates the threat e poses to t at now.
// Score is pure: the same inputs always produce the same Assessment.
//
// Precondition: e and t must be non-nil.
// Postcondition: Score >= 0; no field is NaN.
func Score(e *enemy.Enemy, t *tower.Tower, now time.Time) Assessment {
	distance := e.Position.Dist(t.Position)

	timeToReach := math.Inf(1)
	if e.Speed > 0 {
		timeToReach = distance / e.Speed * 1000
	}

	healthFrac := e.HealthFraction()
	damageCapacity := e.Damage * healthFrac

	survival := math.Inf(1)
	if t.Damage > 0 {
		survival = (math.Max(e.Health, 0) / t.Damage) * t.FireRateMs()
	}

	score := math.Max(0, proximityBase-distance/proximityFalloff)
	score += healthFrac * healthWeight
	score += math.Max(0, e.Speed) / speedNormalizer * speedWeight
	score += math.Max(0, e.Damage) / offenseNormalizer * offenseWeight
	if e.Special {
		score += specialBonus
	}
	score += typeBonus[e.Type]
	switch {
	case timeToReach < urgentWindowMs:
		score += urgentBonus
	case timeToReach < approachWindowMs:
		score += approachBonus
	}

	return Assessment{
		Enemy:          e,
		Score:          score,
		Distance:       distance,
		TimeToReach:    msToDuration(timeToReach),
		TimeToReachMs:  timeToReach,
		DamageCapacity: damageCapacity,
		SurvivalTimeMs: survival,
		EvaluatedAt:    now,
	}
}

// msToDuration converts float milliseconds, saturating at the maximum Duration.
func msToDuration(ms float64) time.Duration {
	if math.IsInf(ms, 1) || ms >= maxRepresentableMs {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms * float64(time.Millisecond))
}
