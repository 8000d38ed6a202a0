package battle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/config"
	"github.com/cory-johannsen/siege/internal/game/dice"
	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/geom"
	"github.com/cory-johannsen/siege/internal/game/spawn"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

func TestTick_BossPhasesThroughCombat(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b, err := New(Deps{
		Config: config.Default(),
		Scenario: &Scenario{
			Name: "arena",
			Path: []geom.Vec{{X: 0}, {X: 10000}},
			Towers: []tower.Tower{{
				ID: "ballista", Kind: tower.KindAttack, Position: geom.Vec{X: 50},
				Range: 500, Damage: 1500, FireRate: 100 * time.Millisecond,
			}},
		},
		Catalog: enemy.DefaultCatalog(),
		Tiers:   spawn.DefaultTiers(),
		Source:  dice.NewSeededSource(1),
		Logger:  zap.NewNop(),
		Start:   start,
	})
	require.NoError(t, err)

	arch, ok := enemy.DefaultCatalog().Boss(enemy.BossMajor)
	require.True(t, ok)
	boss, err := b.enemies.Add(enemy.NewBoss(arch, b.path.Start()))
	require.NoError(t, err)

	at := func(ms int) TickReport {
		rep, err := b.Tick(start.Add(time.Duration(ms) * time.Millisecond))
		require.NoError(t, err)
		return rep
	}

	// 4000 -> 2500 crosses the 0.66 threshold.
	rep := at(100)
	require.Len(t, rep.Transitions, 1)
	assert.Equal(t, 2, rep.Transitions[0].ToPhase)
	assert.Equal(t, "boss_phase_2", rep.Transitions[0].SoundCue)
	assert.True(t, boss.Boss.Invulnerable)
	travelled := boss.Travelled

	// Invulnerable and frozen during the cinematic.
	rep = at(200)
	require.Len(t, rep.Shots, 1)
	assert.Zero(t, rep.Shots[0].Damage)
	assert.Equal(t, 2500.0, boss.Health)
	assert.Equal(t, travelled, boss.Travelled)
	assert.True(t, b.phases.InTransition(boss.ID))

	// The major window is 2500ms; the cooldown has also elapsed by then.
	rep = at(2600)
	require.Len(t, rep.Transitions, 1)
	assert.Equal(t, 3, boss.Boss.Phase)
	assert.True(t, boss.Boss.Enraged)
	assert.Equal(t, 1000.0, boss.Health)

	rep = at(5100)
	assert.Equal(t, []string{boss.ID}, rep.Killed)
	assert.Empty(t, b.Enemies())
	assert.Zero(t, b.phases.Tracked())
	assert.Zero(t, b.sched.Len())
}
