// Package enemy provides enemy archetypes, live enemy entities, and the
// active-enemy registry.
package enemy

import "github.com/cory-johannsen/siege/internal/game/geom"

// Type is the enemy type tag.
type Type string

const (
	TypeBasic   Type = "basic"
	TypeScout   Type = "scout"
	TypeTank    Type = "tank"
	TypeGhost   Type = "ghost"
	TypeArmored Type = "armored"
	TypeSwarm   Type = "swarm"
	TypeHealer  Type = "healer"
)

// Types lists every known enemy type.
var Types = []Type{TypeBasic, TypeScout, TypeTank, TypeGhost, TypeArmored, TypeSwarm, TypeHealer}

// Valid reports whether t is one of the known enemy types.
func (t Type) Valid() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Behavior is a special behavior tag that changes how towers may interact with an enemy.
type Behavior string

const (
	BehaviorNone Behavior = ""
	// BehaviorGhost enemies can only be targeted by towers with ghost detection.
	BehaviorGhost Behavior = "ghost"
)

// BossType is the boss tier of a boss enemy.
type BossType string

const (
	BossMini      BossType = "mini"
	BossMajor     BossType = "major"
	BossLegendary BossType = "legendary"
)

// CinematicState tags a boss that is playing a scripted sequence.
type CinematicState string

const (
	CinematicNone            CinematicState = ""
	CinematicPhaseTransition CinematicState = "phase_transition"
)

// Boss holds the boss-only fields of an enemy.
//
// Invariant: 1 <= Phase <= MaxPhases; Phase never decreases.
type Boss struct {
	Type      BossType
	Phase     int
	MaxPhases int
	// Thresholds are strictly descending fractions of MaxHealth; crossing
	// Thresholds[p-1] moves the boss from phase p to p+1.
	Thresholds   []float64
	Invulnerable bool
	Cinematic    CinematicState
	// Enraged is set when the boss enters its rage phase.
	Enraged bool
}

// Enemy is a live combat entity.
//
// Invariant: 0 <= Health <= MaxHealth.
type Enemy struct {
	// ID uniquely identifies this runtime instance; assigned by Manager.Add.
	ID string
	// Seq is the spawn order; assigned by Manager.Add and strictly increasing.
	Seq       uint64
	Type      Type
	Position  geom.Vec
	Size      float64
	Speed     float64
	Health    float64
	MaxHealth float64
	Damage    float64
	GoldValue int
	// Special marks enemies with a threat-relevant special ability.
	Special  bool
	Behavior Behavior
	// Travelled is the distance covered along the path.
	Travelled float64
	// Exited is set when the enemy leaves the playfield.
	Exited bool
	// Boss is nil for regular enemies.
	Boss *Boss
}

// IsBoss reports whether the enemy carries boss fields.
func (e *Enemy) IsBoss() bool { return e.Boss != nil }

// IsActive reports whether the enemy is alive and still on the playfield.
func (e *Enemy) IsActive() bool { return e.Health > 0 && !e.Exited }

// IsGhost reports whether the enemy has ghost behavior.
func (e *Enemy) IsGhost() bool { return e.Behavior == BehaviorGhost }

// HealthFraction returns Health/MaxHealth.
//
// Postcondition: Returns a value in [0, 1]; returns 0 when MaxHealth <= 0.
func (e *Enemy) HealthFraction() float64 {
	if e.MaxHealth <= 0 {
		return 0
	}
	f := e.Health / e.MaxHealth
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// ApplyDamage reduces Health by amount, flooring at zero. Invulnerable bosses
// and non-positive amounts take no damage.
//
// Postcondition: 0 <= Health; returns the damage actually applied.
func (e *Enemy) ApplyDamage(amount float64) float64 {
	if amount <= 0 || e.Health <= 0 {
		return 0
	}
	if e.Boss != nil && e.Boss.Invulnerable {
		return 0
	}
	if amount > e.Health {
		amount = e.Health
	}
	e.Health -= amount
	return amount
}

// Clone returns a deep copy of e.
func (e *Enemy) Clone() *Enemy {
	c := *e
	if e.Boss != nil {
		b := *e.Boss
		b.Thresholds = append([]float64(nil), e.Boss.Thresholds...)
		c.Boss = &b
	}
	return &c
}
