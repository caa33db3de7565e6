package retrieval

import "fmt"

// Config holds the tunable policy parameters of staged retrieval.
// DominanceThreshold and StageOneMin are operational heuristics rather
// than invariants, which is why they are configuration and not
// constants.
type Config struct {
	// TopK is the base result count for a single-part question.
	TopK int

	// StageOneMin is the floor for the unfiltered stage-1 candidate
	// pool. The pool is max(2*topK, StageOneMin).
	StageOneMin int

	// DominanceThreshold is the minimum vote dominance that justifies
	// a filtered stage-2 search. Below it the query is treated as
	// ambiguous and the mixed stage-1 pool is used as-is.
	DominanceThreshold float64
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() Config {
	return Config{
		TopK:               8,
		StageOneMin:        16,
		DominanceThreshold: 0.6,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("topK must be positive, got %d", c.TopK)
	}
	if c.StageOneMin <= 0 {
		return fmt.Errorf("stageOneMin must be positive, got %d", c.StageOneMin)
	}
	if c.DominanceThreshold <= 0 || c.DominanceThreshold > 1 {
		return fmt.Errorf("dominanceThreshold must be in (0, 1], got %f", c.DominanceThreshold)
	}
	return nil
}
