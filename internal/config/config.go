// Package config provides Viper-based configuration loading for the siege simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Floors below which spawn pacing and boss phase timing are rejected.
const (
	MinSpawnDelay    = 200 * time.Millisecond
	MinPhaseCooldown = 2 * time.Second
	MinBossWave      = 5
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink URL or path: "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// BalanceConfig holds performance analyzer and difficulty balancer tuning.
type BalanceConfig struct {
	// HistoryCapacity is the maximum number of completed waves kept in the rolling history.
	HistoryCapacity int `mapstructure:"history_capacity"`
	// ScoreWindow is the number of most recent waves averaged into the performance score.
	ScoreWindow int `mapstructure:"score_window"`
	// SmoothingFactor is the blend factor toward the raw difficulty level, in (0, 1].
	SmoothingFactor float64 `mapstructure:"smoothing_factor"`
}

// BossConfig holds boss phase state machine settings.
type BossConfig struct {
	// PhaseCooldown is the minimum gap between two phase transitions of the same boss.
	PhaseCooldown time.Duration `mapstructure:"phase_cooldown"`
}

// SpawnConfig holds adaptive spawn strategy settings.
type SpawnConfig struct {
	// MinDelay is the floor applied to every computed spawn delay.
	MinDelay time.Duration `mapstructure:"min_delay"`
	// BossMinWave is the first wave on which bosses may spawn.
	BossMinWave int `mapstructure:"boss_min_wave"`
	// BossSpawnFraction is the fraction of a wave's enemies that must have spawned
	// before a boss may appear.
	BossSpawnFraction float64 `mapstructure:"boss_spawn_fraction"`
}

// SimulationConfig holds headless simulation runner settings.
type SimulationConfig struct {
	// Tick is the fixed simulation timestep.
	Tick time.Duration `mapstructure:"tick"`
	// Waves is the number of waves to simulate.
	Waves int `mapstructure:"waves"`
	// Seed seeds the deterministic random source; zero selects the crypto source.
	Seed int64 `mapstructure:"seed"`
	// ContentDir is the directory holding enemies.yaml, tiers.yaml and scenario.yaml.
	ContentDir string `mapstructure:"content_dir"`
	// PolicyScript is an optional Lua file overriding tower targeting modes.
	PolicyScript string `mapstructure:"policy_script"`
	// MaxWaveDuration aborts a wave that has not completed after this long.
	MaxWaveDuration time.Duration `mapstructure:"max_wave_duration"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Balance    BalanceConfig    `mapstructure:"balance"`
	Boss       BossConfig       `mapstructure:"boss"`
	Spawn      SpawnConfig      `mapstructure:"spawn"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBalance(c.Balance); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Boss.PhaseCooldown < MinPhaseCooldown {
		errs = append(errs, fmt.Sprintf("boss.phase_cooldown must be >= %s, got %s", MinPhaseCooldown, c.Boss.PhaseCooldown))
	}
	if err := validateSpawn(c.Spawn); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if strings.TrimSpace(l.Output) == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	return nil
}

func validateBalance(b BalanceConfig) error {
	var errs []string
	if b.HistoryCapacity < 1 {
		errs = append(errs, fmt.Sprintf("balance.history_capacity must be >= 1, got %d", b.HistoryCapacity))
	}
	if b.ScoreWindow < 1 {
		errs = append(errs, fmt.Sprintf("balance.score_window must be >= 1, got %d", b.ScoreWindow))
	}
	if b.ScoreWindow > b.HistoryCapacity {
		errs = append(errs, "balance.score_window must not exceed balance.history_capacity")
	}
	if b.SmoothingFactor <= 0 || b.SmoothingFactor > 1 {
		errs = append(errs, fmt.Sprintf("balance.smoothing_factor must be in (0, 1], got %g", b.SmoothingFactor))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSpawn(s SpawnConfig) error {
	var errs []string
	if s.MinDelay < MinSpawnDelay {
		errs = append(errs, fmt.Sprintf("spawn.min_delay must be >= %s, got %s", MinSpawnDelay, s.MinDelay))
	}
	if s.BossMinWave < MinBossWave {
		errs = append(errs, fmt.Sprintf("spawn.boss_min_wave must be >= %d, got %d", MinBossWave, s.BossMinWave))
	}
	if s.BossSpawnFraction < 0 || s.BossSpawnFraction > 1 {
		errs = append(errs, fmt.Sprintf("spawn.boss_spawn_fraction must be in [0, 1], got %g", s.BossSpawnFraction))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Tick <= 0 {
		errs = append(errs, "simulation.tick must be positive")
	}
	if s.Waves < 1 {
		errs = append(errs, fmt.Sprintf("simulation.waves must be >= 1, got %d", s.Waves))
	}
	if s.ContentDir == "" {
		errs = append(errs, "simulation.content_dir must not be empty")
	}
	if s.MaxWaveDuration <= 0 {
		errs = append(errs, "simulation.max_wave_duration must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SIEGE_ prefix
	v.SetEnvPrefix("SIEGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every configuration key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("balance.history_capacity", 10)
	v.SetDefault("balance.score_window", 5)
	v.SetDefault("balance.smoothing_factor", 0.3)

	v.SetDefault("boss.phase_cooldown", "2s")

	v.SetDefault("spawn.min_delay", "200ms")
	v.SetDefault("spawn.boss_min_wave", 5)
	v.SetDefault("spawn.boss_spawn_fraction", 0.7)

	v.SetDefault("simulation.tick", "50ms")
	v.SetDefault("simulation.waves", 10)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.content_dir", "content")
	v.SetDefault("simulation.policy_script", "")
	v.SetDefault("simulation.max_wave_duration", "10m")
}

// Default returns the configuration produced by SetDefaults alone.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults fail validation: " + err.Error())
	}
	return cfg
}
