package balance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/siege/internal/game/balance"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

func TestCalculatePlayerPowerLevel_NoTowers(t *testing.T) {
	assert.Equal(t, balance.BaselinePower, balance.CalculatePlayerPowerLevel(nil, 5000))

	disabled := []*tower.Tower{{Level: 20, Damage: 900, Disabled: true}, nil}
	p := balance.CalculatePlayerPowerLevel(disabled, 5000)
	assert.Equal(t, 0.1, p.Score)
	assert.Equal(t, 1.0, p.AverageLevel)
	assert.Zero(t, p.TotalDamage)
	assert.Equal(t, balance.PowerWeak, p.Category())
}

func TestCalculatePlayerPowerLevel_Weighted(t *testing.T) {
	towers := []*tower.Tower{
		{Level: 10, Damage: 2000, Health: 10000},
		{Level: 20, Damage: 3000, Health: 15000},
	}
	p := balance.CalculatePlayerPowerLevel(towers, 50000)
	assert.Equal(t, 2, p.ActiveTowers)
	assert.Equal(t, 15.0, p.AverageLevel)
	assert.Equal(t, 5000.0, p.TotalDamage)
	assert.Equal(t, 25000.0, p.TotalHealth)
	// 15/25*0.3 + 0.5*0.3 + 0.5*0.2 + 0.5*0.2
	assert.InDelta(t, 0.18+0.15+0.1+0.1, p.Score, 1e-9)
	assert.Equal(t, balance.PowerAverage, p.Category())
}

func TestCalculatePlayerPowerLevel_Saturates(t *testing.T) {
	towers := []*tower.Tower{{Level: 100, Damage: 1e6, Health: 1e6}}
	p := balance.CalculatePlayerPowerLevel(towers, 1e7)
	assert.InDelta(t, 1.0, p.Score, 1e-9)
	assert.Equal(t, balance.PowerOverpowered, p.Category())
}

func TestPowerLevel_Category(t *testing.T) {
	cases := []struct {
		score float64
		want  balance.PowerCategory
	}{
		{0, balance.PowerWeak},
		{0.29, balance.PowerWeak},
		{0.3, balance.PowerAverage},
		{0.59, balance.PowerAverage},
		{0.6, balance.PowerStrong},
		{0.84, balance.PowerStrong},
		{0.85, balance.PowerOverpowered},
		{1, balance.PowerOverpowered},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, balance.PowerLevel{Score: tc.score}.Category(), "score %v", tc.score)
	}
}
