package dice

import "go.uber.org/zap"

// Chooser wraps a Source and logger to provide logged random decisions.
// Every decision is logged at debug level with its label and outcome.
type Chooser struct {
	src    Source
	logger *zap.Logger
}

// NewChooser creates a Chooser that draws from src and logs each decision to logger.
//
// Precondition: src and logger must be non-nil.
func NewChooser(src Source, logger *zap.Logger) *Chooser {
	return &Chooser{src: src, logger: logger}
}

// Weighted selects an index from weights and logs the draw.
//
// Precondition: len(weights) > 0.
// Postcondition: Returns an index in [0, len(weights)).
func (c *Chooser) Weighted(label string, weights []int) int {
	idx := WeightedIndex(c.src, weights)
	c.logger.Debug("weighted draw",
		zap.String("label", label),
		zap.Ints("weights", weights),
		zap.Int("index", idx),
	)
	return idx
}

// Chance performs a probability check against p and logs the outcome.
func (c *Chooser) Chance(label string, p float64) bool {
	ok := Chance(c.src, p)
	c.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Float64("p", p),
		zap.Bool("hit", ok),
	)
	return ok
}

// Intn returns a uniform int in [0, n) without logging.
//
// Precondition: n > 0.
func (c *Chooser) Intn(n int) int {
	return c.src.Intn(n)
}
