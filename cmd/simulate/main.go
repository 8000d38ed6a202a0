// Package main runs the adaptive combat balancing engine headless: it plays
// a scenario wave by wave on a virtual clock and logs how difficulty adapts.
package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/siege/internal/config"
	"github.com/cory-johannsen/siege/internal/game/battle"
	"github.com/cory-johannsen/siege/internal/game/dice"
	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/spawn"
	"github.com/cory-johannsen/siege/internal/observability"
	"github.com/cory-johannsen/siege/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/simulate.yaml", "path to configuration file")
	waves := flag.Int("waves", 0, "number of waves to run (overrides config when > 0)")
	policyPath := flag.String("policy", "", "Lua targeting policy (overrides config when set)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *waves > 0 {
		cfg.Simulation.Waves = *waves
	}
	if *policyPath != "" {
		cfg.Simulation.PolicyScript = *policyPath
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	dir := cfg.Simulation.ContentDir
	catalog, err := enemy.LoadCatalog(filepath.Join(dir, "enemies.yaml"))
	if err != nil {
		logger.Fatal("loading enemy catalog", zap.Error(err))
	}
	tiers, err := spawn.LoadTiers(filepath.Join(dir, "tiers.yaml"))
	if err != nil {
		logger.Fatal("loading wave tiers", zap.Error(err))
	}
	scenario, err := battle.LoadScenario(filepath.Join(dir, "scenario.yaml"))
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.String("dir", dir),
		zap.Int("enemy_types", len(catalog.Enemies)),
		zap.Int("boss_types", len(catalog.Bosses)),
		zap.String("scenario", scenario.Name),
		zap.Int("towers", len(scenario.Towers)),
	)

	var policy *scripting.Policy
	if cfg.Simulation.PolicyScript != "" {
		policy, err = scripting.LoadPolicy(cfg.Simulation.PolicyScript, scripting.DefaultInstructionLimit, observability.Component(logger, "policy"))
		if err != nil {
			logger.Fatal("loading targeting policy", zap.Error(err))
		}
		defer policy.Close()
		logger.Info("targeting policy loaded", zap.String("path", cfg.Simulation.PolicyScript))
	}

	b, err := battle.New(battle.Deps{
		Config:   cfg,
		Scenario: scenario,
		Catalog:  catalog,
		Tiers:    tiers,
		Source:   dice.NewSource(cfg.Simulation.Seed),
		Policy:   policy,
		Logger:   logger,
		Start:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		logger.Fatal("assembling battle", zap.Error(err))
	}

	logger.Info("simulation starting",
		zap.Int("waves", cfg.Simulation.Waves),
		zap.Duration("tick", cfg.Simulation.Tick),
		zap.Int64("seed", cfg.Simulation.Seed),
	)

	var killed, leaked, aborted int
	for w := 1; w <= cfg.Simulation.Waves; w++ {
		sum, err := b.RunWave(w, cfg.Simulation.Tick, cfg.Simulation.MaxWaveDuration)
		if err != nil {
			logger.Fatal("running wave", zap.Int("wave", w), zap.Error(err))
		}
		killed += sum.Killed
		leaked += sum.Leaked
		if sum.Aborted {
			aborted++
		}
		logger.Info("wave summary",
			zap.Int("wave", sum.Wave),
			zap.String("tier", string(sum.Tier)),
			zap.String("difficulty", string(sum.Adjustment.Difficulty)),
			zap.Float64("level", sum.Adjustment.Level),
			zap.String("reason", sum.Adjustment.Reason),
			zap.Int("spawned", sum.Spawned),
			zap.Int("bosses", sum.Bosses),
			zap.Int("killed", sum.Killed),
			zap.Int("leaked", sum.Leaked),
			zap.Int("shots", sum.Shots),
			zap.Int("phase_transitions", len(sum.Transitions)),
			zap.Float64("wave_score", sum.Metrics.Score),
			zap.Duration("virtual_duration", sum.Duration),
			zap.Bool("aborted", sum.Aborted),
		)
	}

	logger.Info("simulation finished",
		zap.Int("waves", cfg.Simulation.Waves),
		zap.Int("killed", killed),
		zap.Int("leaked", leaked),
		zap.Int("aborted", aborted),
		zap.Float64("performance_score", b.Difficulty().PerformanceScore()),
		zap.String("trend", string(b.Difficulty().PerformanceTrend())),
		zap.Duration("elapsed", time.Since(start)),
	)
}
