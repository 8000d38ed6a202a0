// Package tower defines player-placed towers as seen by the combat core.
package tower

import (
	"time"

	"github.com/cory-johannsen/siege/internal/game/geom"
)

// Kind is the functional tower type.
type Kind string

const (
	KindAttack  Kind = "attack"
	KindEconomy Kind = "economy"
	KindSupport Kind = "support"
)

// Class is an optional tower class tag.
type Class string

const (
	ClassNone   Class = ""
	ClassSniper Class = "sniper"
	ClassSplash Class = "splash"
	ClassRapid  Class = "rapid"
)

// Ability is an optional special ability.
type Ability string

const (
	AbilityNone           Ability = ""
	AbilityGhostDetection Ability = "ghost_detection"
	AbilityFreeze         Ability = "freeze"
	AbilityPoison         Ability = "poison"
)

// Tower is a placed tower.
//
// Towers are not mutated by targeting; only the firing bookkeeping in
// LastFired changes during combat.
type Tower struct {
	ID       string   `yaml:"id"`
	Kind     Kind     `yaml:"kind"`
	Class    Class    `yaml:"class"`
	Ability  Ability  `yaml:"ability"`
	Position geom.Vec `yaml:"position"`
	Range    float64  `yaml:"range"`
	// RangeMultiplier scales Range; zero is treated as 1.
	RangeMultiplier float64 `yaml:"range_multiplier"`
	Damage          float64 `yaml:"damage"`
	// FireRate is the minimum time between two shots.
	FireRate time.Duration `yaml:"fire_rate"`
	Level    int           `yaml:"level"`
	Health   float64       `yaml:"health"`
	// Targeting is an optional per-tower targeting mode preference.
	Targeting string `yaml:"targeting"`
	// Disabled towers are ignored by combat and power analysis.
	Disabled bool `yaml:"disabled"`

	LastFired time.Time `yaml:"-"`
}

// EffectiveRange returns Range scaled by RangeMultiplier.
//
// Postcondition: Returns >= 0.
func (t *Tower) EffectiveRange() float64 {
	m := t.RangeMultiplier
	if m <= 0 {
		m = 1
	}
	r := t.Range * m
	if r < 0 {
		return 0
	}
	return r
}

// DetectsGhosts reports whether the tower can target ghost-behavior enemies.
func (t *Tower) DetectsGhosts() bool { return t.Ability == AbilityGhostDetection }

// IsActive reports whether the tower takes part in combat.
func (t *Tower) IsActive() bool { return !t.Disabled }

// FireRateMs returns FireRate in float milliseconds.
func (t *Tower) FireRateMs() float64 {
	return float64(t.FireRate) / float64(time.Millisecond)
}

// Ready reports whether the tower may fire at now.
//
// Postcondition: true when the tower never fired or FireRate has elapsed since LastFired.
func (t *Tower) Ready(now time.Time) bool {
	if !t.IsActive() {
		return false
	}
	return t.LastFired.IsZero() || now.Sub(t.LastFired) >= t.FireRate
}
