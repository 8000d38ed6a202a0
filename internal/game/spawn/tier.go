// Package spawn decides what enemy to spawn next, when, and how strong it is.
package spawn

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/siege/internal/game/enemy"
)

// Tier is a wave-number bucket.
type Tier string

const (
	TierEasy      Tier = "easy"
	TierMedium    Tier = "medium"
	TierHard      Tier = "hard"
	TierExtreme   Tier = "extreme"
	TierNightmare Tier = "nightmare"
)

// Tiers lists every tier in wave order.
var Tiers = []Tier{TierEasy, TierMedium, TierHard, TierExtreme, TierNightmare}

// TierFor returns the tier for wave: <=5 easy, <=10 medium, <=15 hard, <=25 extreme, else nightmare.
func TierFor(wave int) Tier {
	switch {
	case wave <= 5:
		return TierEasy
	case wave <= 10:
		return TierMedium
	case wave <= 15:
		return TierHard
	case wave <= 25:
		return TierExtreme
	default:
		return TierNightmare
	}
}

// CompositionEntry is one weighted row of a tier's enemy composition table.
type CompositionEntry struct {
	Type   enemy.Type `yaml:"type"`
	Weight int        `yaml:"weight"`
	// MinWave gates the entry until this wave.
	MinWave int `yaml:"min_wave"`
	// MaxConcurrent caps live enemies of this type; zero means unlimited.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// BossSpawnConfig controls boss appearances in a tier.
type BossSpawnConfig struct {
	SpawnChance      float64          `yaml:"spawn_chance"`
	BossTypes        []enemy.BossType `yaml:"boss_types"`
	HealthMultiplier float64          `yaml:"health_multiplier"`
	SpeedMultiplier  float64          `yaml:"speed_multiplier"`
	GoldMultiplier   float64          `yaml:"gold_multiplier"`
}

// DifficultyModifiers hold the per-wave stat scaling of a tier.
type DifficultyModifiers struct {
	HealthScalingFactor float64 `yaml:"health_scaling_factor"`
	SpeedScalingFactor  float64 `yaml:"speed_scaling_factor"`
	// PerformanceThreshold is the performance score above which enemies get tougher.
	PerformanceThreshold float64 `yaml:"performance_threshold"`
}

// WaveConfig is the immutable spawn configuration of one tier.
type WaveConfig struct {
	Tier          Tier          `yaml:"tier"`
	BaseSpawnRate time.Duration `yaml:"base_spawn_rate"`
	// SpawnRateAcceleration multiplies the delay once per enemy already spawned; in (0, 1].
	SpawnRateAcceleration float64             `yaml:"spawn_rate_acceleration"`
	MaxEnemiesPerWave     int                 `yaml:"max_enemies_per_wave"`
	Composition           []CompositionEntry  `yaml:"composition"`
	Boss                  *BossSpawnConfig    `yaml:"boss"`
	Modifiers             DifficultyModifiers `yaml:"modifiers"`
}

// Validate checks the invariants of one tier config.
func (w *WaveConfig) Validate() error {
	if w.BaseSpawnRate <= 0 {
		return fmt.Errorf("tier %q: base_spawn_rate must be > 0", w.Tier)
	}
	if w.SpawnRateAcceleration <= 0 || w.SpawnRateAcceleration > 1 {
		return fmt.Errorf("tier %q: spawn_rate_acceleration must be in (0, 1]", w.Tier)
	}
	if w.MaxEnemiesPerWave < 1 {
		return fmt.Errorf("tier %q: max_enemies_per_wave must be >= 1", w.Tier)
	}
	if len(w.Composition) == 0 {
		return fmt.Errorf("tier %q: composition must not be empty", w.Tier)
	}
	for _, c := range w.Composition {
		if !c.Type.Valid() {
			return fmt.Errorf("tier %q: unknown enemy type %q", w.Tier, c.Type)
		}
		if c.Weight < 0 || c.MinWave < 0 || c.MaxConcurrent < 0 {
			return fmt.Errorf("tier %q: composition entry %q has a negative field", w.Tier, c.Type)
		}
	}
	if b := w.Boss; b != nil {
		if b.SpawnChance < 0 || b.SpawnChance > 1 {
			return fmt.Errorf("tier %q: boss spawn_chance must be in [0, 1]", w.Tier)
		}
		if len(b.BossTypes) == 0 {
			return fmt.Errorf("tier %q: boss_types must not be empty", w.Tier)
		}
		if b.HealthMultiplier <= 0 || b.SpeedMultiplier <= 0 || b.GoldMultiplier <= 0 {
			return fmt.Errorf("tier %q: boss multipliers must be > 0", w.Tier)
		}
	}
	m := w.Modifiers
	if m.HealthScalingFactor <= 0 || m.SpeedScalingFactor <= 0 {
		return fmt.Errorf("tier %q: scaling factors must be > 0", w.Tier)
	}
	if m.PerformanceThreshold < 0.5 || m.PerformanceThreshold > 1 {
		return fmt.Errorf("tier %q: performance_threshold must be in [0.5, 1]", w.Tier)
	}
	return nil
}

// WaveSize returns how many regular enemies wave spawns under this tier.
//
// Postcondition: 1 <= result <= MaxEnemiesPerWave.
func (w *WaveConfig) WaveSize(wave int) int {
	n := 8 + wave*2
	if n > w.MaxEnemiesPerWave {
		n = w.MaxEnemiesPerWave
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Table holds one WaveConfig per tier.
type Table struct {
	Tiers []WaveConfig `yaml:"tiers"`
}

// Validate checks every tier and requires each Tier to appear exactly once.
func (t *Table) Validate() error {
	seen := make(map[Tier]bool, len(t.Tiers))
	for i := range t.Tiers {
		w := &t.Tiers[i]
		if err := w.Validate(); err != nil {
			return err
		}
		if seen[w.Tier] {
			return fmt.Errorf("duplicate tier %q", w.Tier)
		}
		seen[w.Tier] = true
	}
	for _, tier := range Tiers {
		if !seen[tier] {
			return fmt.Errorf("missing tier %q", tier)
		}
	}
	return nil
}

// For returns the config for wave's tier.
//
// Precondition: t passed Validate.
func (t *Table) For(wave int) *WaveConfig {
	tier := TierFor(wave)
	for i := range t.Tiers {
		if t.Tiers[i].Tier == tier {
			return &t.Tiers[i]
		}
	}
	return &t.Tiers[0]
}

// LoadTiersFromBytes parses and validates a tier table from raw YAML bytes.
func LoadTiersFromBytes(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tier table YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTiers reads and validates the tier table at path.
func LoadTiers(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier table %q: %w", path, err)
	}
	t, err := LoadTiersFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return t, nil
}

// DefaultTiers returns the built-in tier table.
func DefaultTiers() *Table {
	return &Table{Tiers: []WaveConfig{
		{
			Tier: TierEasy, BaseSpawnRate: 1500 * time.Millisecond, SpawnRateAcceleration: 0.98, MaxEnemiesPerWave: 15,
			Composition: []CompositionEntry{
				{Type: enemy.TypeBasic, Weight: 80},
				{Type: enemy.TypeScout, Weight: 20, MinWave: 3},
			},
			Modifiers: DifficultyModifiers{HealthScalingFactor: 1.08, SpeedScalingFactor: 1.02, PerformanceThreshold: 0.7},
		},
		{
			Tier: TierMedium, BaseSpawnRate: 1200 * time.Millisecond, SpawnRateAcceleration: 0.97, MaxEnemiesPerWave: 25,
			Composition: []CompositionEntry{
				{Type: enemy.TypeBasic, Weight: 50},
				{Type: enemy.TypeScout, Weight: 25},
				{Type: enemy.TypeTank, Weight: 15, MinWave: 6, MaxConcurrent: 3},
				{Type: enemy.TypeGhost, Weight: 10, MinWave: 8, MaxConcurrent: 2},
			},
			Boss:      &BossSpawnConfig{SpawnChance: 0.3, BossTypes: []enemy.BossType{enemy.BossMini}, HealthMultiplier: 1, SpeedMultiplier: 1, GoldMultiplier: 2},
			Modifiers: DifficultyModifiers{HealthScalingFactor: 1.06, SpeedScalingFactor: 1.02, PerformanceThreshold: 0.7},
		},
		{
			Tier: TierHard, BaseSpawnRate: 1000 * time.Millisecond, SpawnRateAcceleration: 0.96, MaxEnemiesPerWave: 35,
			Composition: []CompositionEntry{
				{Type: enemy.TypeBasic, Weight: 35},
				{Type: enemy.TypeScout, Weight: 25},
				{Type: enemy.TypeTank, Weight: 20, MaxConcurrent: 5},
				{Type: enemy.TypeGhost, Weight: 10, MaxConcurrent: 3},
				{Type: enemy.TypeArmored, Weight: 10, MinWave: 12, MaxConcurrent: 3},
			},
			Boss:      &BossSpawnConfig{SpawnChance: 0.4, BossTypes: []enemy.BossType{enemy.BossMini, enemy.BossMajor}, HealthMultiplier: 1.2, SpeedMultiplier: 1, GoldMultiplier: 2.5},
			Modifiers: DifficultyModifiers{HealthScalingFactor: 1.05, SpeedScalingFactor: 1.015, PerformanceThreshold: 0.65},
		},
		{
			Tier: TierExtreme, BaseSpawnRate: 800 * time.Millisecond, SpawnRateAcceleration: 0.95, MaxEnemiesPerWave: 45,
			Composition: []CompositionEntry{
				{Type: enemy.TypeBasic, Weight: 25},
				{Type: enemy.TypeScout, Weight: 20},
				{Type: enemy.TypeTank, Weight: 20, MaxConcurrent: 6},
				{Type: enemy.TypeGhost, Weight: 15, MaxConcurrent: 4},
				{Type: enemy.TypeArmored, Weight: 10, MaxConcurrent: 4},
				{Type: enemy.TypeSwarm, Weight: 10, MinWave: 18},
			},
			Boss:      &BossSpawnConfig{SpawnChance: 0.5, BossTypes: []enemy.BossType{enemy.BossMajor}, HealthMultiplier: 1.4, SpeedMultiplier: 1.05, GoldMultiplier: 3},
			Modifiers: DifficultyModifiers{HealthScalingFactor: 1.04, SpeedScalingFactor: 1.01, PerformanceThreshold: 0.6},
		},
		{
			Tier: TierNightmare, BaseSpawnRate: 600 * time.Millisecond, SpawnRateAcceleration: 0.94, MaxEnemiesPerWave: 60,
			Composition: []CompositionEntry{
				{Type: enemy.TypeBasic, Weight: 15},
				{Type: enemy.TypeScout, Weight: 15},
				{Type: enemy.TypeTank, Weight: 20, MaxConcurrent: 8},
				{Type: enemy.TypeGhost, Weight: 15, MaxConcurrent: 5},
				{Type: enemy.TypeArmored, Weight: 15, MaxConcurrent: 5},
				{Type: enemy.TypeSwarm, Weight: 10},
				{Type: enemy.TypeHealer, Weight: 10, MinWave: 26, MaxConcurrent: 4},
			},
			Boss:      &BossSpawnConfig{SpawnChance: 0.6, BossTypes: []enemy.BossType{enemy.BossMajor, enemy.BossLegendary}, HealthMultiplier: 1.6, SpeedMultiplier: 1.1, GoldMultiplier: 4},
			Modifiers: DifficultyModifiers{HealthScalingFactor: 1.03, SpeedScalingFactor: 1.005, PerformanceThreshold: 0.55},
		},
	}}
}
