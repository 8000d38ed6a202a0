package spawn

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/geom"
	"github.com/cory-johannsen/siege/internal/game/schedule"
)

// Sink receives spawned enemies. *enemy.Manager satisfies Sink.
type Sink interface {
	TypeCounter
	Add(e *enemy.Enemy) (*enemy.Enemy, error)
}

// Controller runs one wave's spawn chain on a Scheduler. Each spawn arms the
// next one with a delay recomputed from current state.
//
// Concurrency: Controller shares the simulation goroutine with its Scheduler.
type Controller struct {
	strategy *Strategy
	sched    *schedule.Scheduler
	sink     Sink
	origin   geom.Vec
	logger   *zap.Logger

	// OnSpawn, when set, is called with every registered enemy.
	OnSpawn func(e *enemy.Enemy)

	epoch       uint64
	wave        int
	size        int
	count       int
	bossSpawned bool
	token       *schedule.Token
}

// NewController creates a Controller spawning at origin into sink.
//
// Precondition: strategy, sched, sink and logger must be non-nil.
func NewController(strategy *Strategy, sched *schedule.Scheduler, sink Sink, origin geom.Vec, logger *zap.Logger) *Controller {
	return &Controller{
		strategy: strategy,
		sched:    sched,
		sink:     sink,
		origin:   origin,
		logger:   logger,
	}
}

// StartWave stops any running chain and starts spawning wave.
//
// Postcondition: Running() is true; Spawned() == 0.
func (c *Controller) StartWave(wave int) {
	c.Stop()
	c.wave = wave
	c.size = c.strategy.Tier(wave).WaveSize(wave)
	c.count = 0
	c.bossSpawned = false
	c.arm(c.strategy.NextSpawnDelay(wave, 0))
	c.logger.Info("spawn chain started",
		zap.Int("wave", wave),
		zap.String("tier", string(c.strategy.Tier(wave).Tier)),
		zap.Int("wave_size", c.size),
	)
}

// Stop cancels the running chain. Safe to call multiple times.
//
// Postcondition: no further spawn of the current chain will run.
func (c *Controller) Stop() {
	c.epoch++
	c.token.Cancel()
	c.token = nil
}

// Running reports whether the chain has spawns left.
func (c *Controller) Running() bool { return c.token.Pending() }

// Spawned returns the number of regular enemies spawned in the current wave.
func (c *Controller) Spawned() int { return c.count }

// WaveSize returns the number of regular enemies the current wave spawns.
func (c *Controller) WaveSize() int { return c.size }

// BossSpawned reports whether the current wave has spawned its boss.
func (c *Controller) BossSpawned() bool { return c.bossSpawned }

func (c *Controller) arm(delay time.Duration) {
	epoch := c.epoch
	c.token = c.sched.After(delay, func(time.Time) {
		if epoch != c.epoch {
			return
		}
		c.spawnNext()
	})
}

func (c *Controller) spawnNext() {
	if !c.bossSpawned && c.strategy.ShouldSpawnBoss(c.wave, c.count) {
		if b, ok := c.strategy.CreateBoss(c.wave, c.origin); ok {
			c.bossSpawned = true
			c.register(b)
		}
	}

	t := c.strategy.SelectEnemyType(c.wave, c.sink)
	c.register(c.strategy.CreateEnemy(c.wave, t, c.origin))
	c.count++

	if c.count >= c.size {
		c.token = nil
		c.logger.Info("spawn chain exhausted", zap.Int("wave", c.wave), zap.Int("spawned", c.count))
		return
	}
	c.arm(c.strategy.NextSpawnDelay(c.wave, c.count))
}

func (c *Controller) register(e *enemy.Enemy) {
	added, err := c.sink.Add(e)
	if err != nil {
		c.logger.Warn("spawn rejected", zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("enemy_id", added.ID),
		zap.String("type", string(added.Type)),
		zap.Float64("health", added.Health),
		zap.Float64("speed", added.Speed),
	}
	if added.IsBoss() {
		fields = append(fields, zap.String("boss_type", string(added.Boss.Type)))
	}
	c.logger.Debug("enemy spawned", fields...)
	if c.OnSpawn != nil {
		c.OnSpawn(added)
	}
}
