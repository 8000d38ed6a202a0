package targeting

import (
	"sort"
	"time"

	"github.com/cory-johannsen/siege/internal/game/enemy"
	"github.com/cory-johannsen/siege/internal/game/tower"
)

// Options narrows the candidate set for Select.
type Options struct {
	// Range overrides the tower's effective range when > 0.
	Range float64
	// PriorityTypes, when non-empty, restricts candidates to these types.
	PriorityTypes []enemy.Type
	// ExcludeTypes removes these types from the candidates.
	ExcludeTypes []enemy.Type
	// MinHealth and MaxHealth bound absolute current health; zero means unbounded.
	MinHealth float64
	MaxHealth float64
	// Now is passed to the threat scorer.
	Now time.Time
}

// Candidates returns the enemies t may target under opts, in input order.
//
// An enemy is a candidate iff it is active, within range, allowed by the type
// filters and health bounds, and, if it is a ghost, t detects ghosts.
func Candidates(t *tower.Tower, enemies []*enemy.Enemy, opts Options) []*enemy.Enemy {
	rng := opts.Range
	if rng <= 0 {
		rng = t.EffectiveRange()
	}
	var out []*enemy.Enemy
	for _, e := range enemies {
		if e == nil || !e.IsActive() {
			continue
		}
		if e.IsGhost() && !t.DetectsGhosts() {
			continue
		}
		if e.Position.Dist(t.Position) > rng {
			continue
		}
		if len(opts.PriorityTypes) > 0 && !containsType(opts.PriorityTypes, e.Type) {
			continue
		}
		if containsType(opts.ExcludeTypes, e.Type) {
			continue
		}
		if opts.MinHealth > 0 && e.Health < opts.MinHealth {
			continue
		}
		if opts.MaxHealth > 0 && e.Health > opts.MaxHealth {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Select picks one target for t from enemies using mode.
// Ties keep the earliest enemy in input order. Unknown modes behave like ModeNearest.
//
// Precondition: t must be non-nil.
// Postcondition: Returns nil when no enemy is a candidate; otherwise returns a
// member of Candidates(t, enemies, opts).
func Select(t *tower.Tower, enemies []*enemy.Enemy, mode Mode, opts Options) *enemy.Enemy {
	cands := Candidates(t, enemies, opts)
	switch len(cands) {
	case 0:
		return nil
	case 1:
		return cands[0]
	}

	var key func(e *enemy.Enemy) float64
	switch mode {
	case ModeLowestHP:
		key = func(e *enemy.Enemy) float64 { return -e.Health }
	case ModeHighestHP:
		key = func(e *enemy.Enemy) float64 { return e.Health }
	case ModeFastest:
		key = func(e *enemy.Enemy) float64 { return e.Speed }
	case ModeSlowest:
		key = func(e *enemy.Enemy) float64 { return -e.Speed }
	case ModeHighestValue:
		key = func(e *enemy.Enemy) float64 { return float64(e.GoldValue) }
	case ModeStrongest:
		key = func(e *enemy.Enemy) float64 { return e.Damage }
	case ModeFirst:
		key = func(e *enemy.Enemy) float64 { return -float64(e.Seq) }
	case ModeLast:
		key = func(e *enemy.Enemy) float64 { return float64(e.Seq) }
	case ModeThreatAssessment:
		key = func(e *enemy.Enemy) float64 { return Score(e, t, opts.Now).Score }
	default:
		key = func(e *enemy.Enemy) float64 { return -e.Position.Dist(t.Position) }
	}
	return maxBy(cands, key)
}

// Rank returns the threat assessments of every candidate, highest score first.
// Equal scores keep input order.
func Rank(t *tower.Tower, enemies []*enemy.Enemy, opts Options) []Assessment {
	cands := Candidates(t, enemies, opts)
	out := make([]Assessment, len(cands))
	for i, e := range cands {
		out[i] = Score(e, t, opts.Now)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// maxBy folds left over cands keeping the first element with the greatest key.
func maxBy(cands []*enemy.Enemy, key func(*enemy.Enemy) float64) *enemy.Enemy {
	best := cands[0]
	bestKey := key(best)
	for _, e := range cands[1:] {
		if k := key(e); k > bestKey {
			best, bestKey = e, k
		}
	}
	return best
}

func containsType(types []enemy.Type, t enemy.Type) bool {
	for _, k := range types {
		if k == t {
			return true
		}
	}
	return false
}
