// Package boss implements the multi-phase boss state machine.
//
// A boss advances one phase each time its health fraction crosses the next
// threshold, at most once per cooldown window. Each transition makes the boss
// briefly invulnerable, permanently raises its speed and damage, and produces
// a TransitionEvent describing the effects the presentation layer should play.
package boss

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/geom"
	"github.com/cory-johannsen/siege/internal/game/schedule"
)

// DefaultCooldown is the minimum gap between two transitions of the same boss.
const DefaultCooldown = 2000 * time.Millisecond

// RagePhase is the phase at which a boss becomes enraged.
const RagePhase = 3

// Particle describes one particle the presentation layer should emit.
type Particle struct {
	Position geom.Vec
	Velocity geom.Vec
	Color    string
	Size     float64
	Lifetime time.Duration
}

// TransitionEvent describes one completed phase transition.
type TransitionEvent struct {
	BossID    string
	BossType  enemy.BossType
	FromPhase int
	ToPhase   int
	At        time.Time
	// Window is how long the boss stays invulnerable in its transition cinematic.
	Window      time.Duration
	ScreenShake float64
	Particles   []Particle
	SoundCue    string
}

// StatMultipliers are the permanent multipliers applied on entering a phase.
type StatMultipliers struct {
	Speed  float64
	Damage float64
	Rage   bool
}

// MultipliersFor returns the stat multipliers applied when a boss enters phase.
//
// Postcondition: Speed >= 1 and Damage >= 1 for phase >= 2; phase < 2 returns identity.
func MultipliersFor(phase int) StatMultipliers {
	switch {
	case phase < 2:
		return StatMultipliers{Speed: 1, Damage: 1}
	case phase == 2:
		return StatMultipliers{Speed: 1.2, Damage: 1.3}
	case phase == RagePhase:
		return StatMultipliers{Speed: 1.4, Damage: 1.6, Rage: true}
	default:
		return StatMultipliers{Speed: 1.1, Damage: 1.2}
	}
}

// TransitionWindow returns how long a boss of type bt stays invulnerable after a transition.
func TransitionWindow(bt enemy.BossType) time.Duration {
	switch bt {
	case enemy.BossLegendary:
		return 3000 * time.Millisecond
	case enemy.BossMajor:
		return 2500 * time.Millisecond
	default:
		return 2000 * time.Millisecond
	}
}

// ScreenShake returns the screen-shake intensity for a transition of a boss of type bt.
func ScreenShake(bt enemy.BossType) float64 {
	switch bt {
	case enemy.BossLegendary:
		return 20
	case enemy.BossMajor:
		return 10
	default:
		return 5
	}
}

func particleColor(bt enemy.BossType) string {
	switch bt {
	case enemy.BossLegendary:
		return "#aa00ff"
	case enemy.BossMajor:
		return "#ff3300"
	default:
		return "#ff9900"
	}
}

const (
	particlesPerPhase = 5
	particleSpeed     = 150.0
	particleSize      = 4.0
	particleLifetime  = time.Second
)

// ParticleRing returns phase*5 particles evenly spaced on a ring around center.
//
// Postcondition: len(result) == max(0, phase*5).
func ParticleRing(center geom.Vec, radius float64, phase int, bt enemy.BossType) []Particle {
	n := phase * particlesPerPhase
	if n <= 0 {
		return nil
	}
	out := make([]Particle, n)
	color := particleColor(bt)
	for i := range out {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out[i] = Particle{
			Position: center.Polar(radius, angle),
			Velocity: geom.Vec{}.Polar(particleSpeed, angle),
			Color:    color,
			Size:     particleSize,
			Lifetime: particleLifetime,
		}
	}
	return out
}

// IsPhaseManaged reports whether e is a valid phase-managed boss: it carries a
// boss type, positive max health, a live health value, and at least one threshold.
func IsPhaseManaged(e *enemy.Enemy) bool {
	if e == nil || e.Boss == nil {
		return false
	}
	b := e.Boss
	return b.Type != "" && e.MaxHealth > 0 && e.Health > 0 && len(b.Thresholds) > 0 && b.MaxPhases >= 1
}

// PhaseManager tracks phase transitions for every boss.
//
// Concurrency: PhaseManager shares the simulation goroutine with its Scheduler
// and is not safe for concurrent use.
type PhaseManager struct {
	sched    *schedule.Scheduler
	cooldown time.Duration
	logger   *zap.Logger

	lastTransition map[string]time.Time
	windows        map[string]*schedule.Token
}

// NewPhaseManager creates a PhaseManager whose invulnerability windows run on sched.
//
// Precondition: sched and logger must be non-nil.
// Postcondition: a cooldown below DefaultCooldown is raised to DefaultCooldown.
func NewPhaseManager(sched *schedule.Scheduler, cooldown time.Duration, logger *zap.Logger) *PhaseManager {
	return &PhaseManager{
		sched:          sched,
		cooldown:       max(cooldown, DefaultCooldown),
		logger:         logger,
		lastTransition: make(map[string]time.Time),
		windows:        make(map[string]*schedule.Token),
	}
}

// Update checks e for a newly crossed threshold and performs at most one transition.
//
// No-op (returns false, no mutation) when e is not a valid phase-managed boss,
// when e is already at its last phase, when no threshold is newly crossed, or
// when the previous transition of e happened less than the cooldown ago.
//
// Postcondition: On transition, Boss.Phase increases by exactly 1 and never
// exceeds Boss.MaxPhases; the boss is invulnerable with a phase_transition
// cinematic until the transition window elapses on the scheduler.
func (m *PhaseManager) Update(e *enemy.Enemy, now time.Time) (TransitionEvent, bool) {
	if !IsPhaseManaged(e) {
		return TransitionEvent{}, false
	}
	if last, ok := m.lastTransition[e.ID]; ok && now.Sub(last) < m.cooldown {
		return TransitionEvent{}, false
	}

	b := e.Boss
	frac := e.Health / e.MaxHealth
	next := 0
	for p := b.Phase; p <= b.MaxPhases-1 && p-1 < len(b.Thresholds); p++ {
		if p < 1 {
			continue
		}
		if frac <= b.Thresholds[p-1] {
			next = p + 1
			break
		}
	}
	if next == 0 {
		return TransitionEvent{}, false
	}

	from := b.Phase
	b.Phase = next
	mult := MultipliersFor(next)
	e.Speed *= mult.Speed
	e.Damage *= mult.Damage
	if mult.Rage {
		b.Enraged = true
	}

	window := TransitionWindow(b.Type)
	b.Invulnerable = true
	b.Cinematic = enemy.CinematicPhaseTransition
	m.lastTransition[e.ID] = now
	m.armWindow(e, now.Add(window))

	ev := TransitionEvent{
		BossID:      e.ID,
		BossType:    b.Type,
		FromPhase:   from,
		ToPhase:     next,
		At:          now,
		Window:      window,
		ScreenShake: ScreenShake(b.Type),
		Particles:   ParticleRing(e.Position, math.Max(e.Size, 1)*1.5, next, b.Type),
		SoundCue:    fmt.Sprintf("boss_phase_%d", next),
	}
	m.logger.Info("boss phase transition",
		zap.String("boss_id", e.ID),
		zap.String("boss_type", string(b.Type)),
		zap.Int("from_phase", from),
		zap.Int("to_phase", next),
		zap.Float64("health_fraction", frac),
		zap.Duration("window", window),
	)
	return ev, true
}

// armWindow schedules the end of the transition cinematic at readyAt,
// replacing any window still pending for e.
func (m *PhaseManager) armWindow(e *enemy.Enemy, readyAt time.Time) {
	if old, ok := m.windows[e.ID]; ok {
		old.Cancel()
	}
	id := e.ID
	var tok *schedule.Token
	tok = m.sched.After(readyAt.Sub(m.sched.Now()), func(time.Time) {
		if m.windows[id] != tok {
			return
		}
		delete(m.windows, id)
		if e.Boss != nil {
			e.Boss.Invulnerable = false
			e.Boss.Cinematic = enemy.CinematicNone
		}
	})
	m.windows[id] = tok
}

// InTransition reports whether the boss with bossID has a pending transition window.
func (m *PhaseManager) InTransition(bossID string) bool {
	return m.windows[bossID].Pending()
}

// Release forgets bossID: its pending window is cancelled and its cooldown dropped.
// Call it when a boss dies or leaves the playfield. Safe to call multiple times.
func (m *PhaseManager) Release(bossID string) {
	if tok, ok := m.windows[bossID]; ok {
		tok.Cancel()
		delete(m.windows, bossID)
	}
	delete(m.lastTransition, bossID)
}

// Tracked returns the number of bosses with transition state.
func (m *PhaseManager) Tracked() int {
	n := len(m.lastTransition)
	for id := range m.windows {
		if _, ok := m.lastTransition[id]; !ok {
			n++
		}
	}
	return n
}
