// Package battle runs the headless combat loop that ties spawning, targeting,
// boss phases and difficulty balancing together on a virtual clock.
package battle

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/config"
	"github.com/cory-johannsen/siege/internal/game/balance"
	"github.com/cory-johannsen/siege/internal/game/boss"
	"github.com/cory-johannsen/siege/internal/game/dice"
	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/schedule"
	"github.com/cory-johannsen/siege/internal/game/spawn"
	"github.com/cory-johannsen/siege/internal/game/targeting"
	"github.com/cory-johannsen/siege/internal/game/tower"
	"github.com/cory-johannsen/siege/internal/observability"
	"github.com/cory-johannsen/siege/internal/scripting"
)

// Deps holds everything New needs to assemble a Battle.
type Deps struct {
	Config   config.Config
	Scenario *Scenario
	Catalog  *enemy.Catalog
	Tiers    *spawn.Table
	Source   dice.Source
	// Policy optionally overrides tower targeting modes; nil uses the defaults.
	Policy *scripting.Policy
	Logger *zap.Logger
	// Start is the virtual clock origin.
	Start time.Time
}

// Shot records one tower firing at one enemy.
type Shot struct {
	TowerID string
	EnemyID string
	Mode    targeting.Mode
	Damage  float64
}

// TickReport describes what happened during one Tick.
type TickReport struct {
	Now         time.Time
	Spawned     []*enemy.Enemy
	Shots       []Shot
	Transitions []boss.TransitionEvent
	Killed      []string
	Leaked      []string
	// WaveCompleted is set on the tick that closed the current wave; Metrics
	// then holds the recorded wave performance.
	WaveCompleted bool
	Metrics       balance.Metrics
}

// WaveSummary aggregates the tick reports of one wave run by RunWave.
type WaveSummary struct {
	Wave        int
	Tier        spawn.Tier
	Adjustment  balance.Adjustment
	Metrics     balance.Metrics
	Spawned     int
	Bosses      int
	Killed      int
	Leaked      int
	Shots       int
	Transitions []boss.TransitionEvent
	Duration    time.Duration
	// Aborted is set when the wave hit its time limit before clearing.
	Aborted bool
}

// Battle owns one playfield: its towers, live enemies and the engines driving them.
//
// Concurrency: Battle is driven from a single goroutine; it is not safe for
// concurrent use.
type Battle struct {
	logger *zap.Logger
	path   *Path
	policy *scripting.Policy

	towers    []*tower.Tower
	goldSpent int

	sched      *schedule.Scheduler
	enemies    *enemy.Manager
	difficulty *balance.Manager
	strategy   *spawn.Strategy
	spawner    *spawn.Controller
	phases     *boss.PhaseManager

	last      time.Time
	wave      int
	inWave    bool
	waveStart time.Time
	spawned   []*enemy.Enemy
}

// New assembles a Battle from d.
//
// Precondition: d.Scenario, d.Catalog, d.Tiers, d.Source and d.Logger must be non-nil.
// Postcondition: Returns a Battle with no wave in progress, or an error when
// the scenario path is unusable.
func New(d Deps) (*Battle, error) {
	if d.Scenario == nil || d.Catalog == nil || d.Tiers == nil || d.Source == nil || d.Logger == nil {
		return nil, fmt.Errorf("battle.New: scenario, catalog, tiers, source and logger are required")
	}
	path, err := NewPath(d.Scenario.Path)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", d.Scenario.Name, err)
	}

	b := &Battle{
		logger:    d.Logger,
		path:      path,
		policy:    d.Policy,
		goldSpent: d.Scenario.GoldSpent,
		sched:     schedule.NewScheduler(d.Start),
		enemies:   enemy.NewManager(),
		last:      d.Start,
	}
	for i := range d.Scenario.Towers {
		t := d.Scenario.Towers[i]
		b.towers = append(b.towers, &t)
	}

	spawnLog := observability.Component(d.Logger, "spawn")
	b.difficulty = balance.NewManager(d.Config.Balance, b, observability.Component(d.Logger, "balance"))
	chooser := dice.NewChooser(d.Source, observability.Component(d.Logger, "dice"))
	b.strategy = spawn.NewStrategy(d.Config.Spawn, d.Tiers, d.Catalog, b.difficulty, chooser, spawnLog)
	b.spawner = spawn.NewController(b.strategy, b.sched, b.enemies, path.Start(), spawnLog)
	b.spawner.OnSpawn = func(e *enemy.Enemy) { b.spawned = append(b.spawned, e) }
	b.phases = boss.NewPhaseManager(b.sched, d.Config.Boss.PhaseCooldown, observability.Component(d.Logger, "boss"))
	return b, nil
}

// Towers returns the player's towers. It implements balance.Roster.
func (b *Battle) Towers() []*tower.Tower { return b.towers }

// TotalGoldSpent returns the gold invested in towers. It implements balance.Roster.
func (b *Battle) TotalGoldSpent() int { return b.goldSpent }

// AddTower places a copy of t, charging cost gold to the roster.
//
// Postcondition: Returns an error if a tower with t.ID already exists.
func (b *Battle) AddTower(t tower.Tower, cost int) error {
	if t.ID == "" {
		return fmt.Errorf("tower id must not be empty")
	}
	for _, existing := range b.towers {
		if existing.ID == t.ID {
			return fmt.Errorf("tower %q already placed", t.ID)
		}
	}
	b.towers = append(b.towers, &t)
	if cost > 0 {
		b.goldSpent += cost
	}
	b.logger.Info("tower placed", zap.String("tower_id", t.ID), zap.String("class", string(t.Class)), zap.Int("cost", cost))
	return nil
}

// Now returns the current virtual time.
func (b *Battle) Now() time.Time { return b.sched.Now() }

// Wave returns the most recently started wave, or 0 before the first.
func (b *Battle) Wave() int { return b.wave }

// InWave reports whether a wave is in progress.
func (b *Battle) InWave() bool { return b.inWave }

// Enemies returns the live enemies in spawn order.
func (b *Battle) Enemies() []*enemy.Enemy { return b.enemies.Active() }

// Difficulty returns the balance manager driving this battle.
func (b *Battle) Difficulty() *balance.Manager { return b.difficulty }

// StartWave begins wave at the current virtual time.
//
// Precondition: wave >= 1.
// Postcondition: Returns an error if a wave is already in progress.
func (b *Battle) StartWave(wave int) error {
	if wave < 1 {
		return fmt.Errorf("wave must be >= 1, got %d", wave)
	}
	if b.inWave {
		return fmt.Errorf("wave %d still in progress", b.wave)
	}
	b.wave = wave
	b.inWave = true
	b.waveStart = b.sched.Now()
	b.difficulty.StartWave(wave, b.waveStart)
	b.spawner.StartWave(wave)
	return nil
}

// Tick advances the battle to now.
//
// Order per tick: due spawns and window expiries fire, enemies move along the
// path, ready towers fire, bosses check their phase thresholds, dead and
// exited enemies are swept, and the wave closes when nothing is left to spawn
// or fight.
//
// Postcondition: Returns an error if now is before the current virtual time.
func (b *Battle) Tick(now time.Time) (TickReport, error) {
	if now.Before(b.sched.Now()) {
		return TickReport{}, fmt.Errorf("tick at %s is before current time %s", now, b.sched.Now())
	}
	rep := TickReport{Now: now}
	dt := now.Sub(b.last)

	b.sched.Advance(now)
	rep.Spawned, b.spawned = b.spawned, nil

	b.moveEnemies(dt, &rep)
	b.fireTowers(now, &rep)
	b.updateBosses(now, &rep)
	b.sweep()

	if b.inWave && !b.spawner.Running() && b.enemies.Len() == 0 {
		rep.Metrics, rep.WaveCompleted = b.closeWave(now)
	}
	b.last = now
	return rep, nil
}

// AbortWave ends the current wave at now, dropping every enemy still on the field.
//
// Postcondition: Returns false when no wave is in progress.
func (b *Battle) AbortWave(now time.Time) (balance.Metrics, bool) {
	if !b.inWave {
		return balance.Metrics{}, false
	}
	for _, e := range b.enemies.All() {
		if e.IsBoss() {
			b.phases.Release(e.ID)
		}
	}
	b.enemies.Clear()
	b.logger.Warn("wave aborted", zap.Int("wave", b.wave), zap.Duration("elapsed", now.Sub(b.waveStart)))
	return b.closeWave(now)
}

// RunWave starts wave and ticks the virtual clock by step until it clears, or
// until limit elapses when limit > 0.
//
// Precondition: step > 0.
func (b *Battle) RunWave(wave int, step, limit time.Duration) (WaveSummary, error) {
	if step <= 0 {
		return WaveSummary{}, fmt.Errorf("step must be > 0, got %s", step)
	}
	start := b.sched.Now()
	if err := b.StartWave(wave); err != nil {
		return WaveSummary{}, err
	}
	sum := WaveSummary{
		Wave:       wave,
		Tier:       b.strategy.Tier(wave).Tier,
		Adjustment: b.difficulty.Adjustment(),
	}
	for now := start.Add(step); ; now = now.Add(step) {
		rep, err := b.Tick(now)
		if err != nil {
			return sum, err
		}
		for _, e := range rep.Spawned {
			sum.Spawned++
			if e.IsBoss() {
				sum.Bosses++
			}
		}
		sum.Killed += len(rep.Killed)
		sum.Leaked += len(rep.Leaked)
		sum.Shots += len(rep.Shots)
		sum.Transitions = append(sum.Transitions, rep.Transitions...)

		if rep.WaveCompleted {
			sum.Metrics = rep.Metrics
			sum.Duration = now.Sub(start)
			return sum, nil
		}
		if limit > 0 && now.Sub(start) >= limit {
			sum.Metrics, _ = b.AbortWave(now)
			sum.Duration = now.Sub(start)
			sum.Aborted = true
			return sum, nil
		}
	}
}

func (b *Battle) moveEnemies(dt time.Duration, rep *TickReport) {
	if dt <= 0 {
		return
	}
	end := b.path.Length()
	for _, e := range b.enemies.Active() {
		if e.IsBoss() && e.Boss.Cinematic != enemy.CinematicNone {
			continue
		}
		e.Travelled += e.Speed * dt.Seconds()
		e.Position = b.path.At(e.Travelled)
		if e.Travelled < end {
			continue
		}
		e.Exited = true
		b.difficulty.RecordDamageTaken(e.Damage)
		b.difficulty.RecordEnemyLeaked(e.GoldValue)
		rep.Leaked = append(rep.Leaked, e.ID)
		b.logger.Debug("enemy leaked", zap.String("enemy_id", e.ID), zap.String("type", string(e.Type)))
	}
}

func (b *Battle) fireTowers(now time.Time, rep *TickReport) {
	active := b.enemies.Active()
	if len(active) == 0 {
		return
	}
	opts := targeting.Options{Now: now}
	for _, t := range b.towers {
		if !t.Ready(now) {
			continue
		}
		mode := b.policy.ModeFor(t)
		target := targeting.Select(t, active, mode, opts)
		if target == nil {
			continue
		}
		if mode == targeting.ModeThreatAssessment {
			b.logThreats(t, active, opts)
		}
		dealt := target.ApplyDamage(t.Damage)
		t.LastFired = now
		rep.Shots = append(rep.Shots, Shot{TowerID: t.ID, EnemyID: target.ID, Mode: mode, Damage: dealt})
		if dealt > 0 {
			b.difficulty.RecordDamageDealt(dealt)
		}
		if target.Health > 0 {
			continue
		}
		b.difficulty.RecordEnemyKilled()
		b.difficulty.RecordGoldEarned(target.GoldValue)
		rep.Killed = append(rep.Killed, target.ID)
		b.logger.Debug("enemy killed",
			zap.String("enemy_id", target.ID),
			zap.String("tower_id", t.ID),
			zap.String("mode", string(mode)),
		)
	}
}

// logThreats writes the threat ranking t fired on at debug level.
func (b *Battle) logThreats(t *tower.Tower, active []*enemy.Enemy, opts targeting.Options) {
	ce := b.logger.Check(zap.DebugLevel, "threat ranking")
	if ce == nil {
		return
	}
	ranked := targeting.Rank(t, active, opts)
	ids := make([]string, len(ranked))
	scores := make([]float64, len(ranked))
	for i, a := range ranked {
		ids[i] = a.Enemy.ID
		scores[i] = a.Score
	}
	ce.Write(
		zap.String("tower_id", t.ID),
		zap.Strings("enemy_ids", ids),
		zap.Float64s("scores", scores),
	)
}

func (b *Battle) updateBosses(now time.Time, rep *TickReport) {
	for _, e := range b.enemies.Active() {
		if !e.IsBoss() {
			continue
		}
		if ev, ok := b.phases.Update(e, now); ok {
			rep.Transitions = append(rep.Transitions, ev)
		}
	}
}

// sweep removes dead and exited enemies.
func (b *Battle) sweep() {
	for _, e := range b.enemies.All() {
		if e.IsActive() {
			continue
		}
		if e.IsBoss() {
			b.phases.Release(e.ID)
		}
		_ = b.enemies.Remove(e.ID)
	}
}

func (b *Battle) closeWave(now time.Time) (balance.Metrics, bool) {
	b.spawner.Stop()
	b.inWave = false
	return b.difficulty.CompleteWave(now)
}
