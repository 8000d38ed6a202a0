package balance

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/siege/internal/game/enemy"
)

// DifficultyLevel buckets the scalar difficulty.
type DifficultyLevel string

const (
	LevelEasy    DifficultyLevel = "easy"
	LevelNormal  DifficultyLevel = "normal"
	LevelHard    DifficultyLevel = "hard"
	LevelExtreme DifficultyLevel = "extreme"
)

// Multiplier bounds.
const (
	MinMultiplier          = 0.5
	MaxMultiplier          = 2.5
	MinSpawnRateMultiplier = 0.5
	MaxSpawnRateMultiplier = 2.0
)

// DefaultSmoothing is the blend factor toward the raw level when a previous adjustment exists.
const DefaultSmoothing = 0.3

// Adjustment is one immutable difficulty decision.
//
// Invariant: every multiplier is within [MinMultiplier, MaxMultiplier], except
// SpawnRate which is within [MinSpawnRateMultiplier, MaxSpawnRateMultiplier].
type Adjustment struct {
	EnemyHealth float64
	EnemySpeed  float64
	EnemyDamage float64
	SpawnRate   float64
	BossHealth  float64
	BossDamage  float64
	// Level is the smoothed, band-clamped scalar difficulty.
	Level      float64
	Difficulty DifficultyLevel
	Reason     string
	Wave       int
}

// NeutralAdjustment leaves every stat unchanged.
var NeutralAdjustment = Adjustment{
	EnemyHealth: 1, EnemySpeed: 1, EnemyDamage: 1, SpawnRate: 1,
	BossHealth: 1, BossDamage: 1, Level: 1, Difficulty: LevelNormal,
	Reason: "neutral",
}

// enemyLevel is the mean of the three regular-enemy multipliers.
func (a Adjustment) enemyLevel() float64 {
	return (a.EnemyHealth + a.EnemySpeed + a.EnemyDamage) / 3
}

// ApplyEnemy returns a copy of e scaled by the regular-enemy multipliers.
//
// Postcondition: e is not modified; the copy has MaxHealth == Health.
func (a Adjustment) ApplyEnemy(e *enemy.Enemy) *enemy.Enemy {
	c := e.Clone()
	c.Health *= a.EnemyHealth
	c.MaxHealth = c.Health
	c.Speed *= a.EnemySpeed
	c.Damage *= a.EnemyDamage
	return c
}

// ApplyBoss returns a copy of e scaled by the boss multipliers only.
//
// Postcondition: e is not modified; the copy has MaxHealth == Health.
func (a Adjustment) ApplyBoss(e *enemy.Enemy) *enemy.Enemy {
	c := e.Clone()
	c.Health *= a.BossHealth
	c.MaxHealth = c.Health
	c.Damage *= a.BossDamage
	return c
}

// BaseDifficulty returns the wave-driven base level. The curve is piecewise
// linear and continuous, with the slope shrinking in each later segment.
func BaseDifficulty(wave int) float64 {
	if wave < 1 {
		wave = 1
	}
	w := float64(wave)
	switch {
	case wave <= 10:
		return 0.6 + (w-1)*0.06
	case wave <= 25:
		return 1.14 + (w-10)*0.03
	case wave <= 50:
		return 1.59 + (w-25)*0.015
	case wave <= 75:
		return 1.965 + (w-50)*0.008
	default:
		return 2.165 + (w-75)*0.004
	}
}

// Band returns the allowed level range for wave.
//
// Postcondition: lo <= hi.
func Band(wave int) (lo, hi float64) {
	w := float64(wave)
	lo = math.Max(0.5, 0.3+w*0.02)
	hi = math.Min(2.5, 1.5+w*0.01)
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func performanceDelta(score float64) (float64, string) {
	switch {
	case score > 0.8:
		return 0.3, "excellent performance +0.30"
	case score > 0.6:
		return 0.1, "good performance +0.10"
	case score < 0.3:
		return -0.2, "struggling -0.20"
	case score < 0.5:
		return -0.1, "below average performance -0.10"
	}
	return 0, ""
}

func powerDelta(c PowerCategory) (float64, string) {
	switch c {
	case PowerOverpowered:
		return 0.4, "overpowered roster +0.40"
	case PowerStrong:
		return 0.2, "strong roster +0.20"
	case PowerWeak:
		return -0.15, "weak roster -0.15"
	}
	return 0, ""
}

// LevelFor buckets a scalar difficulty level.
func LevelFor(level float64) DifficultyLevel {
	switch {
	case level < 0.8:
		return LevelEasy
	case level < 1.2:
		return LevelNormal
	case level < 1.6:
		return LevelHard
	default:
		return LevelExtreme
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Balancer turns performance, power and wave number into an Adjustment.
type Balancer struct {
	// Smoothing is the blend factor toward the raw level, in (0, 1].
	Smoothing float64
}

// CalculateBalancedAdjustment uses a Balancer with DefaultSmoothing.
func CalculateBalancedAdjustment(performanceScore float64, power PowerLevel, wave int, prev *Adjustment) Adjustment {
	return Balancer{Smoothing: DefaultSmoothing}.Calculate(performanceScore, power, wave, prev)
}

// Calculate computes a new Adjustment. prev, when non-nil, is blended toward
// but never modified.
//
// Postcondition: every multiplier is within its bounds for any input,
// including NaN scores and non-positive waves.
func (b Balancer) Calculate(performanceScore float64, power PowerLevel, wave int, prev *Adjustment) Adjustment {
	if wave < 1 {
		wave = 1
	}
	if math.IsNaN(performanceScore) {
		performanceScore = NeutralScore
	}
	performanceScore = clamp01(performanceScore)

	base := BaseDifficulty(wave)
	reasons := []string{fmt.Sprintf("wave %d base %.2f", wave, base)}

	pd, pr := performanceDelta(performanceScore)
	if pr != "" {
		reasons = append(reasons, pr)
	}
	wd, wr := powerDelta(power.Category())
	if wr != "" {
		reasons = append(reasons, wr)
	}
	level := base + pd + wd

	if prev != nil {
		s := b.Smoothing
		if s <= 0 || s > 1 || math.IsNaN(s) {
			s = DefaultSmoothing
		}
		p := prev.enemyLevel()
		if !math.IsNaN(p) {
			level = p + s*(level-p)
			reasons = append(reasons, fmt.Sprintf("smoothed from %.2f", p))
		}
	}

	lo, hi := Band(wave)
	level = clamp(level, lo, hi)

	m := 1 + (level-1)*0.5
	return Adjustment{
		EnemyHealth: clamp(m*1.0, MinMultiplier, MaxMultiplier),
		EnemySpeed:  clamp(m*0.8, MinMultiplier, MaxMultiplier),
		EnemyDamage: clamp(m*0.9, MinMultiplier, MaxMultiplier),
		SpawnRate:   clamp(1+(level-1)*0.3, MinSpawnRateMultiplier, MaxSpawnRateMultiplier),
		BossHealth:  clamp(m*1.2, MinMultiplier, MaxMultiplier),
		BossDamage:  clamp(m*1.1, MinMultiplier, MaxMultiplier),
		Level:       level,
		Difficulty:  LevelFor(level),
		Reason:      strings.Join(reasons, "; "),
		Wave:        wave,
	}
}
