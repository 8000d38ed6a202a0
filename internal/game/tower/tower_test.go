package tower_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/siege/internal/game/tower"
)

func TestTower_EffectiveRange(t *testing.T) {
	tw := tower.Tower{Range: 100}
	assert.InDelta(t, 100.0, tw.EffectiveRange(), 1e-9, "zero multiplier is treated as 1")
	tw.RangeMultiplier = 1.5
	assert.InDelta(t, 150.0, tw.EffectiveRange(), 1e-9)
	tw.Range = -5
	assert.Zero(t, tw.EffectiveRange())
}

func TestTower_Ready(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tw := tower.Tower{FireRate: 500 * time.Millisecond}
	assert.True(t, tw.Ready(now), "never fired")
	tw.LastFired = now
	assert.False(t, tw.Ready(now.Add(499*time.Millisecond)))
	assert.True(t, tw.Ready(now.Add(500*time.Millisecond)))
	tw.Disabled = true
	assert.False(t, tw.Ready(now.Add(time.Hour)))
}

func TestTower_DetectsGhosts(t *testing.T) {
	assert.True(t, (&tower.Tower{Ability: tower.AbilityGhostDetection}).DetectsGhosts())
	assert.False(t, (&tower.Tower{Ability: tower.AbilityFreeze}).DetectsGhosts())
}

func TestTower_FireRateMs(t *testing.T) {
	assert.InDelta(t, 750.0, (&tower.Tower{FireRate: 750 * time.Millisecond}).FireRateMs(), 1e-9)
}
