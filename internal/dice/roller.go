package dice

import "math/rand"

// Roller is the randomness capability used by the evaluator. Roll returns a
// uniform integer in [min, max].
//
// The evaluator holds no locks; a Roller shared across goroutines must be
// safe for concurrent use on its own.
type Roller interface {
	Roll(min, max int) int
}

// RollerFunc adapts a function to Roller.
type RollerFunc func(min, max int) int

func (f RollerFunc) Roll(min, max int) int { return f(min, max) }

// SeededRoller rolls from a math/rand source.
//
// Given the same seed and the same sequence of calls it produces the same
// results, which is what makes a roll replayable from its recorded seed.
type SeededRoller struct {
	rng *rand.Rand
}

// NewSeededRoller creates a deterministic roller for seed.
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a value in [min, max]; an empty range yields min.
func (r *SeededRoller) Roll(min, max int) int {
	if max <= min {
		return min
	}
	return r.rng.Intn(max-min+1) + min
}
