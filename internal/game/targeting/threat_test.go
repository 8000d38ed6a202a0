package targeting_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/geom"
	"github.com/cory-johannsen/siege/internal/game/targeting"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScore_Components(t *testing.T) {
	tw := &tower.Tower{Position: geom.Vec{}, Damage: 25, FireRate: 500 * time.Millisecond}
	e := &enemy.Enemy{
		Type:      enemy.TypeTank,
		Position:  geom.Vec{X: 300, Y: 400}, // distance 500
		Speed:     50,
		Health:    50,
		MaxHealth: 100,
		Damage:    40,
		Special:   true,
	}
	a := targeting.Score(e, tw, now)

	assert.InDelta(t, 500.0, a.Distance, 1e-9)
	assert.InDelta(t, 10000.0, a.TimeToReachMs, 1e-9)
	assert.Equal(t, 10*time.Second, a.TimeToReach)
	assert.InDelta(t, 20.0, a.DamageCapacity, 1e-9)
	assert.InDelta(t, 1000.0, a.SurvivalTimeMs, 1e-9)
	// proximity 50 + health 15 + speed 10 + offense 50 + special 40 + tank 35 + urgency 0
	assert.InDelta(t, 200.0, a.Score, 1e-9)
	assert.Equal(t, now, a.EvaluatedAt)
}

func TestScore_UrgencyBands(t *testing.T) {
	tw := &tower.Tower{}
	base := &enemy.Enemy{Type: enemy.TypeBasic, Position: geom.Vec{X: 1000}, Health: 1, MaxHealth: 1}

	slow := *base
	slow.Speed = 50 // 20000ms
	mid := *base
	mid.Speed = 125 // 8000ms
	fast := *base
	fast.Speed = 250 // 4000ms

	s0 := targeting.Score(&slow, tw, now).Score - 50.0/100*20
	s1 := targeting.Score(&mid, tw, now).Score - 125.0/100*20
	s2 := targeting.Score(&fast, tw, now).Score - 250.0/100*20
	assert.InDelta(t, 25.0, s1-s0, 1e-9)
	assert.InDelta(t, 50.0, s2-s0, 1e-9)
}

func TestScore_ZeroDenominators(t *testing.T) {
	tw := &tower.Tower{Damage: 0, FireRate: 0}
	e := &enemy.Enemy{Type: enemy.TypeBasic, Position: geom.Vec{X: 10}, Speed: 0, Health: 10, MaxHealth: 0}
	a := targeting.Score(e, tw, now)
	assert.True(t, math.IsInf(a.TimeToReachMs, 1))
	assert.Equal(t, time.Duration(math.MaxInt64), a.TimeToReach)
	assert.True(t, math.IsInf(a.SurvivalTimeMs, 1))
	assert.Zero(t, a.DamageCapacity)
	assert.False(t, math.IsNaN(a.Score))
}

func TestScore_TypeBonus(t *testing.T) {
	tw := &tower.Tower{}
	scoreOf := func(typ enemy.Type) float64 {
		e := &enemy.Enemy{Type: typ, Position: geom.Vec{X: 2000}, Health: 1, MaxHealth: 1}
		return targeting.Score(e, tw, now).Score
	}
	basic := scoreOf(enemy.TypeBasic)
	assert.InDelta(t, 35.0, scoreOf(enemy.TypeTank)-basic, 1e-9)
	assert.InDelta(t, 20.0, scoreOf(enemy.TypeScout)-basic, 1e-9)
	assert.InDelta(t, 30.0, scoreOf(enemy.TypeGhost)-basic, 1e-9)
	assert.InDelta(t, 0.0, scoreOf(enemy.TypeSwarm)-basic, 1e-9)
}

func TestScore_Property_NonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := &enemy.Enemy{
			Type:      rapid.SampledFrom(enemy.Types).Draw(rt, "type"),
			Position:  geom.Vec{X: rapid.Float64Range(-5000, 5000).Draw(rt, "x"), Y: rapid.Float64Range(-5000, 5000).Draw(rt, "y")},
			Speed:     rapid.Float64Range(-10, 500).Draw(rt, "speed"),
			Health:    rapid.Float64Range(0, 10000).Draw(rt, "health"),
			MaxHealth: rapid.Float64Range(0, 10000).Draw(rt, "max_health"),
			Damage:    rapid.Float64Range(-10, 500).Draw(rt, "damage"),
			Special:   rapid.Bool().Draw(rt, "special"),
		}
		tw := &tower.Tower{
			Damage:   rapid.Float64Range(0, 1000).Draw(rt, "tower_damage"),
			FireRate: time.Duration(rapid.IntRange(0, 5000).Draw(rt, "fire_rate")) * time.Millisecond,
		}
		a := targeting.Score(e, tw, now)
		assert.GreaterOrEqual(rt, a.Score, 0.0)
		assert.False(rt, math.IsNaN(a.Score))
		assert.False(rt, math.IsNaN(a.SurvivalTimeMs))
	})
}
