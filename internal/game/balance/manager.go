package balance

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/config"
	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

// Roster provides live snapshots of the player's towers and total spend.
type Roster interface {
	Towers() []*tower.Tower
	TotalGoldSpent() int
}

// Manager owns the performance history and the current difficulty adjustment.
// It is constructed by the game-loop owner; there is no package-level instance.
//
// The adjustment is memoized: it is computed on first query and reused until
// a new wave starts or Recalculate is called.
type Manager struct {
	mu       sync.Mutex
	balancer Balancer
	perf     *PerformanceAnalyzer
	roster   Roster
	logger   *zap.Logger

	wave       int
	waveStart  time.Time
	inWave     bool
	dealt      float64
	taken      float64
	killed     int
	leaked     int
	goldEarned int
	goldMissed int

	current *Adjustment
	stale   bool
}

// NewManager creates a Manager.
//
// Precondition: roster and logger must be non-nil.
func NewManager(cfg config.BalanceConfig, roster Roster, logger *zap.Logger) *Manager {
	return &Manager{
		balancer: Balancer{Smoothing: cfg.SmoothingFactor},
		perf:     NewPerformanceAnalyzer(cfg.HistoryCapacity, cfg.ScoreWindow),
		roster:   roster,
		logger:   logger,
		wave:     1,
	}
}

// StartWave resets the per-wave counters and invalidates the memoized adjustment.
func (m *Manager) StartWave(wave int, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wave < 1 {
		wave = 1
	}
	m.wave = wave
	m.waveStart = now
	m.inWave = true
	m.dealt, m.taken = 0, 0
	m.killed, m.leaked = 0, 0
	m.goldEarned, m.goldMissed = 0, 0
	m.stale = true
	m.logger.Info("wave started", zap.Int("wave", wave))
}

// RecordDamageDealt adds damage dealt by towers in the current wave.
func (m *Manager) RecordDamageDealt(amount float64) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	m.dealt += amount
	m.mu.Unlock()
}

// RecordDamageTaken adds damage the player took in the current wave.
func (m *Manager) RecordDamageTaken(amount float64) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	m.taken += amount
	m.mu.Unlock()
}

// RecordEnemyKilled counts a kill in the current wave.
func (m *Manager) RecordEnemyKilled() {
	m.mu.Lock()
	m.killed++
	m.mu.Unlock()
}

// RecordGoldEarned adds gold earned from kills in the current wave.
func (m *Manager) RecordGoldEarned(amount int) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	m.goldEarned += amount
	m.mu.Unlock()
}

// RecordEnemyLeaked counts an enemy that left the playfield and the gold it carried.
func (m *Manager) RecordEnemyLeaked(gold int) {
	m.mu.Lock()
	m.leaked++
	if gold > 0 {
		m.goldMissed += gold
	}
	m.mu.Unlock()
}

// CompleteWave records the current wave's metrics into the performance history.
//
// Postcondition: Returns the recorded metrics with Score set; returns false
// when no wave is in progress.
func (m *Manager) CompleteWave(now time.Time) (Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inWave {
		return Metrics{}, false
	}
	m.inWave = false

	elapsed := now.Sub(m.waveStart)
	if elapsed < 0 {
		elapsed = 0
	}
	power := CalculatePlayerPowerLevel(m.roster.Towers(), m.roster.TotalGoldSpent())

	gold := 1.0
	if total := m.goldEarned + m.goldMissed; total > 0 {
		gold = float64(m.goldEarned) / float64(total)
	}
	clearRate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		clearRate = float64(m.killed) / secs
	}

	rec := m.perf.RecordWavePerformance(Metrics{
		WaveNumber:        m.wave,
		CompletionTime:    elapsed,
		TowersUsed:        power.ActiveTowers,
		AverageTowerLevel: power.AverageLevel,
		DamageDealt:       m.dealt,
		DamageTaken:       m.taken,
		GoldEfficiency:    gold,
		WaveClearSpeed:    clearRate,
	})
	m.logger.Info("wave completed",
		zap.Int("wave", rec.WaveNumber),
		zap.Duration("completion_time", rec.CompletionTime),
		zap.Int("killed", m.killed),
		zap.Int("leaked", m.leaked),
		zap.Float64("damage_dealt", rec.DamageDealt),
		zap.Float64("damage_taken", rec.DamageTaken),
		zap.Float64("wave_score", rec.Score),
		zap.Float64("performance_score", m.perf.PerformanceScore()),
		zap.String("trend", string(m.perf.PerformanceTrend())),
	)
	return rec, true
}

// Adjustment returns the memoized adjustment, computing it if none exists or
// a new wave has started since it was computed.
func (m *Manager) Adjustment() Adjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.stale {
		m.recalculateLocked()
	}
	return *m.current
}

// Recalculate replaces the adjustment with a freshly computed one, smoothed
// toward the previous value.
func (m *Manager) Recalculate() Adjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recalculateLocked()
	return *m.current
}

func (m *Manager) recalculateLocked() {
	score := m.perf.PerformanceScore()
	power := CalculatePlayerPowerLevel(m.roster.Towers(), m.roster.TotalGoldSpent())
	next := m.balancer.Calculate(score, power, m.wave, m.current)
	m.current = &next
	m.stale = false
	m.logger.Info("difficulty recalculated",
		zap.Int("wave", next.Wave),
		zap.Float64("level", next.Level),
		zap.String("difficulty", string(next.Difficulty)),
		zap.String("reason", next.Reason),
		zap.Float64("performance_score", score),
		zap.String("power", string(power.Category())),
		zap.Float64("enemy_health", next.EnemyHealth),
		zap.Float64("enemy_speed", next.EnemySpeed),
		zap.Float64("enemy_damage", next.EnemyDamage),
		zap.Float64("spawn_rate", next.SpawnRate),
		zap.Float64("boss_health", next.BossHealth),
		zap.Float64("boss_damage", next.BossDamage),
	)
}

// AdjustEnemy returns a copy of e scaled by the current enemy multipliers.
func (m *Manager) AdjustEnemy(e *enemy.Enemy) *enemy.Enemy {
	return m.Adjustment().ApplyEnemy(e)
}

// AdjustBoss returns a copy of e scaled by the current boss multipliers.
func (m *Manager) AdjustBoss(e *enemy.Enemy) *enemy.Enemy {
	return m.Adjustment().ApplyBoss(e)
}

// PerformanceScore returns the rolling performance score.
func (m *Manager) PerformanceScore() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perf.PerformanceScore()
}

// PerformanceTrend returns the recent performance trend.
func (m *Manager) PerformanceTrend() Trend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perf.PerformanceTrend()
}

// History returns a copy of the recorded waves.
func (m *Manager) History() []Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perf.History()
}

// Wave returns the current wave number.
func (m *Manager) Wave() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wave
}

// Power returns the current power level of the roster.
func (m *Manager) Power() PowerLevel {
	return CalculatePlayerPowerLevel(m.roster.Towers(), m.roster.TotalGoldSpent())
}
