package balance_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/siege/internal/game/balance"
	"github.com/cory-johannsen/siege/internal/game/enemy"
)

func TestBaseDifficulty_Curve(t *testing.T) {
	assert.InDelta(t, 0.6, balance.BaseDifficulty(1), 1e-9)
	assert.InDelta(t, 1.14, balance.BaseDifficulty(10), 1e-9)
	assert.InDelta(t, 1.59, balance.BaseDifficulty(25), 1e-9)
	assert.InDelta(t, 1.965, balance.BaseDifficulty(50), 1e-9)
	assert.InDelta(t, 2.165, balance.BaseDifficulty(75), 1e-9)
	assert.Equal(t, balance.BaseDifficulty(1), balance.BaseDifficulty(0))

	slope := func(w int) float64 { return balance.BaseDifficulty(w+1) - balance.BaseDifficulty(w) }
	assert.Greater(t, slope(5), slope(15))
	assert.Greater(t, slope(15), slope(30))
	assert.Greater(t, slope(30), slope(60))
	assert.Greater(t, slope(60), slope(80))
}

func TestBand(t *testing.T) {
	lo, hi := balance.Band(1)
	assert.Equal(t, 0.5, lo)
	assert.InDelta(t, 1.51, hi, 1e-9)

	lo, hi = balance.Band(200)
	assert.Equal(t, 2.5, hi)
	assert.LessOrEqual(t, lo, hi)
}

func TestCalculate_WaveOneNeutralWeakIsNotExtreme(t *testing.T) {
	adj := balance.CalculateBalancedAdjustment(0.5, balance.BaselinePower, 1, nil)
	assert.Contains(t, []balance.DifficultyLevel{balance.LevelEasy, balance.LevelNormal}, adj.Difficulty)
	assert.Equal(t, balance.LevelEasy, adj.Difficulty)
	assert.InDelta(t, 0.5, adj.Level, 1e-9)
	assert.Contains(t, adj.Reason, "weak roster")
}

func TestCalculate_ClampedToBand(t *testing.T) {
	adj := balance.CalculateBalancedAdjustment(0.9, balance.PowerLevel{Score: 0.9}, 10, nil)
	// 1.14 + 0.3 + 0.4 clamped to 1.6
	assert.InDelta(t, 1.6, adj.Level, 1e-9)
	assert.Equal(t, balance.LevelExtreme, adj.Difficulty)
	assert.InDelta(t, 1.3, adj.EnemyHealth, 1e-9)
	assert.InDelta(t, 1.04, adj.EnemySpeed, 1e-9)
	assert.InDelta(t, 1.17, adj.EnemyDamage, 1e-9)
	assert.InDelta(t, 1.18, adj.SpawnRate, 1e-9)
	assert.InDelta(t, 1.56, adj.BossHealth, 1e-9)
	assert.InDelta(t, 1.43, adj.BossDamage, 1e-9)
	assert.Contains(t, adj.Reason, "excellent performance")
	assert.Contains(t, adj.Reason, "overpowered roster")
}

func TestCalculate_PerformanceDeltas(t *testing.T) {
	avg := balance.PowerLevel{Score: 0.4}
	base := balance.BaseDifficulty(10)
	cases := []struct {
		score float64
		delta float64
	}{
		{0.9, 0.3},
		{0.7, 0.1},
		{0.55, 0},
		{0.4, -0.1},
		{0.1, -0.2},
	}
	for _, tc := range cases {
		adj := balance.CalculateBalancedAdjustment(tc.score, avg, 10, nil)
		assert.InDelta(t, base+tc.delta, adj.Level, 1e-9, "score %v", tc.score)
	}
}

func TestCalculate_Smoothing(t *testing.T) {
	prev := balance.NeutralAdjustment
	adj := balance.CalculateBalancedAdjustment(0.55, balance.PowerLevel{Score: 0.4}, 10, &prev)
	// prev level 1, raw 1.14
	assert.InDelta(t, 1+0.3*0.14, adj.Level, 1e-9)
	assert.True(t, strings.Contains(adj.Reason, "smoothed"))
	assert.Equal(t, balance.NeutralAdjustment, prev)

	custom := balance.Balancer{Smoothing: 1}.Calculate(0.55, balance.PowerLevel{Score: 0.4}, 10, &prev)
	assert.InDelta(t, 1.14, custom.Level, 1e-9)
}

func TestCalculate_NaNScoreIsNeutral(t *testing.T) {
	adj := balance.CalculateBalancedAdjustment(math.NaN(), balance.PowerLevel{Score: 0.4}, 5, nil)
	assert.InDelta(t, balance.BaseDifficulty(5), adj.Level, 1e-9)
}

func TestAdjustment_ApplyIsPure(t *testing.T) {
	adj := balance.Adjustment{EnemyHealth: 2, EnemySpeed: 0.5, EnemyDamage: 1.5, BossHealth: 1.2, BossDamage: 1.1}
	e := &enemy.Enemy{Health: 100, MaxHealth: 100, Speed: 40, Damage: 10}

	c := adj.ApplyEnemy(e)
	assert.Equal(t, 200.0, c.Health)
	assert.Equal(t, 200.0, c.MaxHealth)
	assert.Equal(t, 20.0, c.Speed)
	assert.Equal(t, 15.0, c.Damage)
	assert.Equal(t, 100.0, e.Health)
	assert.Equal(t, 40.0, e.Speed)

	b := &enemy.Enemy{Health: 1000, MaxHealth: 1000, Speed: 10, Damage: 50, Boss: &enemy.Boss{Type: enemy.BossMini, Phase: 1}}
	bc := adj.ApplyBoss(b)
	assert.InDelta(t, 1200.0, bc.Health, 1e-9)
	assert.Equal(t, bc.Health, bc.MaxHealth)
	assert.Equal(t, 10.0, bc.Speed)
	assert.InDelta(t, 55.0, bc.Damage, 1e-9)
	assert.NotSame(t, b.Boss, bc.Boss)
	assert.Equal(t, 1000.0, b.Health)
}

func TestCalculate_Property_Bounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var prev *balance.Adjustment
		steps := rapid.IntRange(1, 10).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			score := rapid.Float64Range(0, 1).Draw(rt, "score")
			power := balance.PowerLevel{Score: rapid.Float64Range(0, 1).Draw(rt, "power")}
			wave := rapid.IntRange(1, 500).Draw(rt, "wave")
			adj := balance.CalculateBalancedAdjustment(score, power, wave, prev)

			for name, v := range map[string]float64{
				"health": adj.EnemyHealth, "speed": adj.EnemySpeed, "damage": adj.EnemyDamage,
				"boss_health": adj.BossHealth, "boss_damage": adj.BossDamage,
			} {
				assert.GreaterOrEqual(rt, v, balance.MinMultiplier, name)
				assert.LessOrEqual(rt, v, balance.MaxMultiplier, name)
			}
			assert.GreaterOrEqual(rt, adj.SpawnRate, balance.MinSpawnRateMultiplier)
			assert.LessOrEqual(rt, adj.SpawnRate, balance.MaxSpawnRateMultiplier)

			lo, hi := balance.Band(wave)
			assert.GreaterOrEqual(rt, adj.Level, lo-1e-12)
			assert.LessOrEqual(rt, adj.Level, hi+1e-12)
			prev = &adj
		}
	})
}

func TestCalculate_Property_WaveOneNeutralWeak(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		power := balance.PowerLevel{Score: rapid.Float64Range(0, 0.2999).Draw(rt, "power")}
		adj := balance.CalculateBalancedAdjustment(0.5, power, 1, nil)
		assert.NotEqual(rt, balance.LevelExtreme, adj.Difficulty)
	})
}
