package battle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/siege/internal/game/geom"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

// Scenario is a playfield layout: the enemy path and the player's towers.
type Scenario struct {
	Name   string        `yaml:"name"`
	Path   []geom.Vec    `yaml:"path"`
	Towers []tower.Tower `yaml:"towers"`
	// GoldSpent is the total gold the player has invested in Towers.
	GoldSpent int `yaml:"gold_spent"`
}

// Validate checks that the scenario satisfies basic invariants.
//
// Postcondition: Returns nil iff the path has at least two points, every tower
// has a unique non-empty ID, a non-negative range, damage and fire rate, and
// GoldSpent >= 0.
func (s *Scenario) Validate() error {
	if len(s.Path) < 2 {
		return fmt.Errorf("scenario %q: path needs at least 2 points", s.Name)
	}
	if s.GoldSpent < 0 {
		return fmt.Errorf("scenario %q: gold_spent must be >= 0", s.Name)
	}
	seen := make(map[string]bool, len(s.Towers))
	for _, t := range s.Towers {
		if t.ID == "" {
			return fmt.Errorf("scenario %q: tower id must not be empty", s.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("scenario %q: duplicate tower id %q", s.Name, t.ID)
		}
		seen[t.ID] = true
		if t.Range < 0 || t.Damage < 0 || t.FireRate < 0 {
			return fmt.Errorf("scenario %q: tower %q has a negative stat", s.Name, t.ID)
		}
	}
	return nil
}

// LoadScenarioFromBytes parses and validates a scenario from raw YAML bytes.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads and validates the scenario at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	s, err := LoadScenarioFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return s, nil
}
