package spawn_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/siege/internal/config"
	"github.com/cory-johannsen/siege/internal/game/balance"
	"github.com/cory-johannsen/siege/internal/game/dice"
	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/geom"
	"github.com/cory-johannsen/siege/internal/game/spawn"
)

type fakeDifficulty struct {
	adj   balance.Adjustment
	score float64
}

func (f *fakeDifficulty) Adjustment() balance.Adjustment { return f.adj }
func (f *fakeDifficulty) PerformanceScore() float64      { return f.score }

func neutral() *fakeDifficulty {
	return &fakeDifficulty{adj: balance.NeutralAdjustment, score: balance.NeutralScore}
}

// fixedSource always returns v modulo n.
type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int { return f.v % n }

func newStrategy(tbl *spawn.Table, diff spawn.Difficulty, src dice.Source) *spawn.Strategy {
	return spawn.NewStrategy(config.Default().Spawn, tbl, enemy.DefaultCatalog(), diff,
		dice.NewChooser(src, zap.NewNop()), zap.NewNop())
}

func TestNextSpawnDelay_Formula(t *testing.T) {
	s := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{})

	// 1500ms * 0.98^0 * 1 * 1 * (1 - 0.02)
	assert.InDelta(t, float64(1470*time.Millisecond), float64(s.NextSpawnDelay(1, 0)), float64(time.Microsecond))

	want := 1500 * math.Pow(0.98, 5) * 0.98
	got := float64(s.NextSpawnDelay(1, 5)) / float64(time.Millisecond)
	assert.InDelta(t, want, got, 1e-3)

	assert.Less(t, s.NextSpawnDelay(3, 4), s.NextSpawnDelay(3, 0), "spawns accelerate within a wave")
}

func TestNextSpawnDelay_HarderSpawnsFaster(t *testing.T) {
	easy := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{})
	hard := neutral()
	hard.adj.SpawnRate = 2
	fast := newStrategy(spawn.DefaultTiers(), hard, fixedSource{})
	assert.InDelta(t, float64(easy.NextSpawnDelay(2, 0))/2, float64(fast.NextSpawnDelay(2, 0)), float64(time.Microsecond))

	good := neutral()
	good.score = 1
	skilled := newStrategy(spawn.DefaultTiers(), good, fixedSource{})
	assert.Less(t, skilled.NextSpawnDelay(2, 0), easy.NextSpawnDelay(2, 0))
}

func TestNextSpawnDelay_Floor(t *testing.T) {
	s := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{})
	assert.Equal(t, spawn.DefaultMinDelay, s.NextSpawnDelay(60, 200))

	for _, d := range []time.Duration{0, 10 * time.Millisecond, 199 * time.Millisecond} {
		cfg := config.Default().Spawn
		cfg.MinDelay = d
		low := spawn.NewStrategy(cfg, spawn.DefaultTiers(), enemy.DefaultCatalog(), neutral(),
			dice.NewChooser(fixedSource{}, zap.NewNop()), zap.NewNop())
		assert.Equal(t, spawn.DefaultMinDelay, low.NextSpawnDelay(60, 50), "configured min delay %s", d)
	}
}

func TestNextSpawnDelay_Property_Floor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := &fakeDifficulty{
			adj:   balance.Adjustment{SpawnRate: rapid.Float64Range(0.5, 2).Draw(rt, "spawn_rate")},
			score: rapid.Float64Range(0, 1).Draw(rt, "score"),
		}
		s := newStrategy(spawn.DefaultTiers(), d, fixedSource{})
		wave := rapid.IntRange(1, 200).Draw(rt, "wave")
		count := rapid.IntRange(0, 500).Draw(rt, "count")
		assert.GreaterOrEqual(rt, s.NextSpawnDelay(wave, count), 200*time.Millisecond)
	})
}

func TestSelectEnemyType_MinWaveGate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		s := newStrategy(spawn.DefaultTiers(), neutral(), src)
		for i := 0; i < 20; i++ {
			assert.Equal(rt, enemy.TypeBasic, s.SelectEnemyType(1, enemy.NewManager()))
		}
	})
}

func TestSelectEnemyType_WeightedWalk(t *testing.T) {
	// Easy tier at wave 3: basic 80, scout 20.
	assert.Equal(t, enemy.TypeBasic, newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{v: 79}).SelectEnemyType(3, enemy.NewManager()))
	assert.Equal(t, enemy.TypeScout, newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{v: 80}).SelectEnemyType(3, enemy.NewManager()))
}

func TestSelectEnemyType_ConcurrencyCap(t *testing.T) {
	tbl := spawn.DefaultTiers()
	tbl.Tiers[0].Composition = []spawn.CompositionEntry{
		{Type: enemy.TypeTank, Weight: 10, MaxConcurrent: 1},
	}
	s := newStrategy(tbl, neutral(), fixedSource{})
	assert.Equal(t, enemy.TypeTank, s.SelectEnemyType(1, enemy.NewManager()))

	active := enemy.NewManager()
	tank, err := active.Add(&enemy.Enemy{Type: enemy.TypeTank, Health: 10, MaxHealth: 10})
	require.NoError(t, err)
	assert.Equal(t, enemy.TypeBasic, s.SelectEnemyType(1, active))

	// Dead and exited enemies do not count toward the cap.
	tank.Health = 0
	assert.Equal(t, enemy.TypeTank, s.SelectEnemyType(1, active))

	tank.Health = 10
	tank.Exited = true
	assert.Equal(t, enemy.TypeTank, s.SelectEnemyType(1, active))
}

func TestSelectEnemyType_Property_ListedOrBasic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tbl := spawn.DefaultTiers()
		s := newStrategy(tbl, neutral(), dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")))
		wave := rapid.IntRange(1, 60).Draw(rt, "wave")
		active := enemy.NewManager()
		for i := rapid.IntRange(0, 40).Draw(rt, "active"); i > 0; i-- {
			_, err := active.Add(&enemy.Enemy{Type: rapid.SampledFrom(enemy.Types).Draw(rt, "type"), Health: 1, MaxHealth: 1})
			require.NoError(rt, err)
		}
		got := s.SelectEnemyType(wave, active)
		if got == enemy.TypeBasic {
			return
		}
		listed := false
		for _, c := range tbl.For(wave).Composition {
			if c.Type == got {
				listed = true
				assert.GreaterOrEqual(rt, wave, c.MinWave)
			}
		}
		assert.True(rt, listed, "type %s not in tier", got)
	})
}

func TestShouldSpawnBoss(t *testing.T) {
	always := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{v: 0})
	never := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{v: 999_999})

	assert.False(t, always.ShouldSpawnBoss(4, 100), "easy tier has no boss")
	// Medium tier: 0.7 * 25 = 17.5.
	assert.False(t, always.ShouldSpawnBoss(6, 17))
	assert.True(t, always.ShouldSpawnBoss(6, 18))
	assert.False(t, never.ShouldSpawnBoss(6, 18))

	cfg := config.Default().Spawn
	cfg.BossMinWave = 8
	late := spawn.NewStrategy(cfg, spawn.DefaultTiers(), enemy.DefaultCatalog(), neutral(),
		dice.NewChooser(fixedSource{}, zap.NewNop()), zap.NewNop())
	assert.False(t, late.ShouldSpawnBoss(7, 24))
	assert.True(t, late.ShouldSpawnBoss(8, 24))
}

func TestShouldSpawnBoss_MinWaveFloor(t *testing.T) {
	tbl := spawn.DefaultTiers()
	tbl.Tiers[0].Boss = tbl.Tiers[1].Boss

	cfg := config.Default().Spawn
	cfg.BossMinWave = 1
	s := spawn.NewStrategy(cfg, tbl, enemy.DefaultCatalog(), neutral(),
		dice.NewChooser(fixedSource{v: 0}, zap.NewNop()), zap.NewNop())
	for w := 1; w < spawn.DefaultBossMinWave; w++ {
		assert.False(t, s.ShouldSpawnBoss(w, 14), "wave %d", w)
	}
	assert.True(t, s.ShouldSpawnBoss(spawn.DefaultBossMinWave, 14))
}

func TestApplyDifficultyScaling_Enemy(t *testing.T) {
	s := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{})
	base := enemy.NewEnemy(enemy.DefaultCatalog().Archetype(enemy.TypeBasic), geom.Vec{})

	got := s.ApplyDifficultyScaling(base, 3)
	assert.InDelta(t, 100*1.08*1.08, got.Health, 1e-9)
	assert.Equal(t, got.Health, got.MaxHealth)
	assert.InDelta(t, 50*1.02, got.Speed, 1e-9)
	assert.Equal(t, 100.0, base.Health, "input is not modified")

	d := neutral()
	d.adj.EnemyHealth = 2
	d.adj.BossHealth = 1
	doubled := newStrategy(spawn.DefaultTiers(), d, fixedSource{}).ApplyDifficultyScaling(base, 3)
	assert.InDelta(t, 2*got.Health, doubled.Health, 1e-9)
}

func TestApplyDifficultyScaling_PerformanceModifier(t *testing.T) {
	d := neutral()
	d.score = 1
	s := newStrategy(spawn.DefaultTiers(), d, fixedSource{})
	base := enemy.NewEnemy(enemy.DefaultCatalog().Archetype(enemy.TypeBasic), geom.Vec{})
	got := s.ApplyDifficultyScaling(base, 1)
	// threshold 0.7: 1 + 0.3*0.5
	assert.InDelta(t, 115.0, got.Health, 1e-9)
	assert.InDelta(t, 57.5, got.Speed, 1e-9)
}

func TestCreateBoss(t *testing.T) {
	d := neutral()
	d.adj.EnemyHealth = 2
	d.adj.BossHealth = 1.5
	s := newStrategy(spawn.DefaultTiers(), d, fixedSource{})

	_, ok := s.CreateBoss(3, geom.Vec{})
	assert.False(t, ok, "easy tier has no boss config")

	b, ok := s.CreateBoss(6, geom.Vec{X: 5})
	require.True(t, ok)
	require.NotNil(t, b.Boss)
	assert.Equal(t, enemy.BossMini, b.Boss.Type)
	assert.Equal(t, 1, b.Boss.Phase)
	// 1500 * 1.06^5 * tier 1.0 * boss 1.5; enemy multiplier not applied.
	assert.InDelta(t, 1500*math.Pow(1.06, 5)*1.5, b.Health, 1e-6)
	assert.Equal(t, b.Health, b.MaxHealth)
	assert.Equal(t, 300, b.GoldValue)
	assert.Equal(t, geom.Vec{X: 5}, b.Position)
}

func TestCreateEnemy(t *testing.T) {
	s := newStrategy(spawn.DefaultTiers(), neutral(), fixedSource{})
	e := s.CreateEnemy(1, enemy.TypeGhost, geom.Vec{})
	assert.Equal(t, enemy.TypeGhost, e.Type)
	assert.True(t, e.IsGhost())
	assert.Equal(t, 80.0, e.Health)
}
