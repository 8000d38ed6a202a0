// Package dice provides the core randomness abstraction used by the spawn
// strategy: uniform integer draws, probability checks, and weighted selection.
package dice

// Source is the randomness provider for all random draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// chanceResolution is the number of discrete steps Chance uses to sample [0, 1).
const chanceResolution = 1_000_000

// Float64 returns a uniform value in [0, 1) drawn from src.
//
// Postcondition: 0 <= result < 1.
func Float64(src Source) float64 {
	return float64(src.Intn(chanceResolution)) / chanceResolution
}

// Chance reports whether a uniform draw from src falls below p.
//
// Postcondition: Always false when p <= 0; always true when p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return Float64(src) < p
}

// WeightedIndex selects an index from weights using a cumulative-subtraction walk.
// Non-positive weights are never selected unless every weight is non-positive.
//
// Precondition: len(weights) > 0.
// Postcondition: Returns an index in [0, len(weights)); returns 0 when the total
// weight is not positive.
func WeightedIndex(src Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	r := src.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i
		}
	}
	return 0
}
