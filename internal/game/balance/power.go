package balance

import "github.com/cory-johannsen/siege/internal/game/tower"

// PowerCategory buckets a power score.
type PowerCategory string

const (
	PowerWeak        PowerCategory = "weak"
	PowerAverage     PowerCategory = "average"
	PowerStrong      PowerCategory = "strong"
	PowerOverpowered PowerCategory = "overpowered"
)

// PowerLevel summarizes the strength of the player's tower roster.
type PowerLevel struct {
	// Score is in [0, 1].
	Score        float64
	ActiveTowers int
	AverageLevel float64
	TotalDamage  float64
	TotalHealth  float64
	GoldSpent    int
}

// BaselinePower is reported when the player has no active towers.
var BaselinePower = PowerLevel{Score: 0.1, AverageLevel: 1}

// Normalization caps for the power sub-scores.
const (
	powerLevelCap  = 25.0
	powerDamageCap = 10000.0
	powerHealthCap = 50000.0
	powerGoldCap   = 100000.0
)

// CalculatePlayerPowerLevel derives a power score from the active towers and
// the total gold spent on them.
//
// Postcondition: Score is in [0, 1]; returns BaselinePower when no tower is active.
func CalculatePlayerPowerLevel(towers []*tower.Tower, totalGoldSpent int) PowerLevel {
	p := PowerLevel{GoldSpent: totalGoldSpent}
	levels := 0
	for _, t := range towers {
		if t == nil || !t.IsActive() {
			continue
		}
		p.ActiveTowers++
		levels += t.Level
		p.TotalDamage += t.Damage
		p.TotalHealth += t.Health
	}
	if p.ActiveTowers == 0 {
		return BaselinePower
	}
	p.AverageLevel = float64(levels) / float64(p.ActiveTowers)
	p.Score = clamp01(
		clamp01(p.AverageLevel/powerLevelCap)*0.3 +
			clamp01(p.TotalDamage/powerDamageCap)*0.3 +
			clamp01(p.TotalHealth/powerHealthCap)*0.2 +
			clamp01(float64(totalGoldSpent)/powerGoldCap)*0.2)
	return p
}

// Category buckets the power score.
func (p PowerLevel) Category() PowerCategory {
	switch {
	case p.Score < 0.3:
		return PowerWeak
	case p.Score < 0.6:
		return PowerAverage
	case p.Score < 0.85:
		return PowerStrong
	default:
		return PowerOverpowered
	}
}
