package targeting

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/siege/internal/game/tower"
)

// Mode is a target selection strategy.
type Mode string

const (
	ModeNearest          Mode = "nearest"
	ModeLowestHP         Mode = "lowest_hp"
	ModeHighestHP        Mode = "highest_hp"
	ModeFastest          Mode = "fastest"
	ModeSlowest          Mode = "slowest"
	ModeHighestValue     Mode = "highest_value"
	ModeStrongest        Mode = "strongest"
	ModeFirst            Mode = "first"
	ModeLast             Mode = "last"
	ModeThreatAssessment Mode = "threat_assessment"
)

// Modes lists every selection mode.
var Modes = []Mode{
	ModeNearest, ModeLowestHP, ModeHighestHP, ModeFastest, ModeSlowest,
	ModeHighestValue, ModeStrongest, ModeFirst, ModeLast, ModeThreatAssessment,
}

// ParseMode converts a case-insensitive mode name into a Mode.
//
// Postcondition: Returns an error for unknown names.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Modes {
		if k == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown targeting mode %q", s)
}

// Level thresholds at which towers escalate to more expensive heuristics.
const (
	FastestLevel  = 5
	LowestHPLevel = 10
	ThreatLevel   = 15
)

// ModeFor returns the default targeting mode for t.
//
// Precedence: an explicit valid per-tower preference, then economy towers
// (highest value), then freeze towers (fastest), then sniper towers
// (highest health), then escalation by level:
// nearest, fastest, lowest health, threat assessment.
func ModeFor(t *tower.Tower) Mode {
	if t.Targeting != "" {
		if m, err := ParseMode(t.Targeting); err == nil {
			return m
		}
	}
	switch {
	case t.Kind == tower.KindEconomy:
		return ModeHighestValue
	case t.Ability == tower.AbilityFreeze:
		return ModeFastest
	case t.Class == tower.ClassSniper:
		return ModeHighestHP
	}
	switch {
	case t.Level >= ThreatLevel:
		return ModeThreatAssessment
	case t.Level >= LowestHPLevel:
		return ModeLowestHP
	case t.Level >= FastestLevel:
		return ModeFastest
	default:
		return ModeNearest
	}
}
