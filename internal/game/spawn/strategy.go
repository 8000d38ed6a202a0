package spawn

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/config"
	"github.com/cory-johannsen/siege/internal/game/balance"
	"github.com/cory-johannsen/siege/internal/game/dice"
	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/geom"
)

const (
	// DefaultMinDelay is the floor applied to every spawn delay.
	DefaultMinDelay = config.MinSpawnDelay
	// DefaultBossMinWave is the earliest wave on which a boss may spawn.
	DefaultBossMinWave = config.MinBossWave
)

// Difficulty is the view of the difficulty manager the strategy needs.
type Difficulty interface {
	Adjustment() balance.Adjustment
	PerformanceScore() float64
}

// Strategy chooses enemy types, spawn delays, bosses and enemy stats per wave tier.
type Strategy struct {
	tiers      *Table
	catalog    *enemy.Catalog
	difficulty Difficulty
	chooser    *dice.Chooser
	cfg        config.SpawnConfig
	logger     *zap.Logger
}

// NewStrategy creates a Strategy.
//
// Precondition: every argument must be non-nil; tiers and catalog must be validated.
// Postcondition: MinDelay and BossMinWave are raised to DefaultMinDelay and
// DefaultBossMinWave when configured lower.
func NewStrategy(cfg config.SpawnConfig, tiers *Table, catalog *enemy.Catalog, difficulty Difficulty, chooser *dice.Chooser, logger *zap.Logger) *Strategy {
	cfg.MinDelay = max(cfg.MinDelay, DefaultMinDelay)
	cfg.BossMinWave = max(cfg.BossMinWave, DefaultBossMinWave)
	return &Strategy{
		tiers:      tiers,
		catalog:    catalog,
		difficulty: difficulty,
		chooser:    chooser,
		cfg:        cfg,
		logger:     logger,
	}
}

// Tier returns the config of wave's tier.
func (s *Strategy) Tier(wave int) *WaveConfig { return s.tiers.For(wave) }

// ProgressionScaling shortens delays as waves advance, bounded below by 0.3.
func ProgressionScaling(wave int) float64 {
	return math.Max(0.3, 1-float64(wave)*0.02)
}

// NextSpawnDelay returns the delay before the next spawn in wave after count
// enemies have already spawned.
//
// Postcondition: Returns at least the configured minimum delay.
func (s *Strategy) NextSpawnDelay(wave, count int) time.Duration {
	tier := s.tiers.For(wave)
	if count < 0 {
		count = 0
	}
	adj := s.difficulty.Adjustment()
	perf := 1 / balance.PerformanceStatModifier(s.difficulty.PerformanceScore(), tier.Modifiers.PerformanceThreshold)
	dynamic := 1 / adj.SpawnRate

	ms := float64(tier.BaseSpawnRate) / float64(time.Millisecond)
	ms *= math.Pow(tier.SpawnRateAcceleration, float64(count))
	ms *= perf * dynamic * ProgressionScaling(wave)

	d := time.Duration(ms * float64(time.Millisecond))
	if math.IsNaN(ms) || d < s.cfg.MinDelay {
		d = s.cfg.MinDelay
	}
	return d
}

// TypeCounter reports how many regular enemies of a type are active.
// *enemy.Manager satisfies TypeCounter.
type TypeCounter interface {
	CountByType(t enemy.Type) int
}

// SelectEnemyType draws the next regular enemy type for wave. Entries are
// eligible once wave reaches their MinWave and while fewer than MaxConcurrent
// of their type are active according to active. With no eligible entry the
// basic type is returned.
func (s *Strategy) SelectEnemyType(wave int, active TypeCounter) enemy.Type {
	tier := s.tiers.For(wave)

	var eligible []CompositionEntry
	for _, c := range tier.Composition {
		if wave < c.MinWave {
			continue
		}
		if c.MaxConcurrent > 0 && active.CountByType(c.Type) >= c.MaxConcurrent {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return enemy.TypeBasic
	}
	weights := make([]int, len(eligible))
	for i, c := range eligible {
		weights[i] = c.Weight
	}
	return eligible[s.chooser.Weighted("spawn.enemy_type", weights)].Type
}

// ShouldSpawnBoss reports whether a boss should appear after count spawns in wave.
// It requires a tier boss config, wave at or past the boss minimum, count above
// the configured fraction of the tier's maximum wave size, and a successful chance roll.
func (s *Strategy) ShouldSpawnBoss(wave, count int) bool {
	tier := s.tiers.For(wave)
	if tier.Boss == nil || wave < s.cfg.BossMinWave {
		return false
	}
	if float64(count) <= s.cfg.BossSpawnFraction*float64(tier.MaxEnemiesPerWave) {
		return false
	}
	return s.chooser.Chance("spawn.boss", tier.Boss.SpawnChance)
}

// ApplyDifficultyScaling returns a scaled copy of e for wave.
//
// Health is multiplied by HealthScalingFactor^(wave-1) and speed by
// SpeedScalingFactor^((wave-1)/2); both are then multiplied by the performance
// stat modifier. Bosses then receive the tier boss multipliers and the boss
// difficulty multipliers; regular enemies receive the enemy difficulty multipliers.
//
// Postcondition: e is not modified; the result has MaxHealth == Health.
func (s *Strategy) ApplyDifficultyScaling(e *enemy.Enemy, wave int) *enemy.Enemy {
	if wave < 1 {
		wave = 1
	}
	tier := s.tiers.For(wave)
	mod := tier.Modifiers
	c := e.Clone()

	c.Health *= math.Pow(mod.HealthScalingFactor, float64(wave-1))
	c.Speed *= math.Pow(mod.SpeedScalingFactor, float64(wave-1)*0.5)

	perf := balance.PerformanceStatModifier(s.difficulty.PerformanceScore(), mod.PerformanceThreshold)
	c.Health *= perf
	c.Speed *= perf
	c.MaxHealth = c.Health

	adj := s.difficulty.Adjustment()
	if c.IsBoss() {
		if b := tier.Boss; b != nil {
			c.Health *= b.HealthMultiplier
			c.Speed *= b.SpeedMultiplier
			c.GoldValue = int(math.Round(float64(c.GoldValue) * b.GoldMultiplier))
		}
		return adj.ApplyBoss(c)
	}
	return adj.ApplyEnemy(c)
}

// CreateEnemy builds a fully scaled regular enemy of type t at pos.
func (s *Strategy) CreateEnemy(wave int, t enemy.Type, pos geom.Vec) *enemy.Enemy {
	return s.ApplyDifficultyScaling(enemy.NewEnemy(s.catalog.Archetype(t), pos), wave)
}

// CreateBoss builds a fully scaled boss for wave at pos.
//
// Postcondition: Returns false when the tier has no boss config or the drawn
// boss type has no archetype.
func (s *Strategy) CreateBoss(wave int, pos geom.Vec) (*enemy.Enemy, bool) {
	tier := s.tiers.For(wave)
	if tier.Boss == nil || len(tier.Boss.BossTypes) == 0 {
		return nil, false
	}
	weights := make([]int, len(tier.Boss.BossTypes))
	for i := range weights {
		weights[i] = 1
	}
	bt := tier.Boss.BossTypes[s.chooser.Weighted("spawn.boss_type", weights)]
	arch, ok := s.catalog.Boss(bt)
	if !ok {
		s.logger.Warn("no archetype for boss type", zap.String("boss_type", string(bt)))
		return nil, false
	}
	return s.ApplyDifficultyScaling(enemy.NewBoss(arch, pos), wave), true
}
