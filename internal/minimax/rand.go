package minimax

import "lukechampine.com/frand"

// RandSource supplies the randomness used for blunders and random picks.
// *math/rand.Rand satisfies it, which is what tests use for reproducible runs.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

type frandSource struct{}

// NewRandSource returns a source backed by frand. It is safe for concurrent use.
func NewRandSource() RandSource {
	return frandSource{}
}

func (frandSource) Float64() float64 {
	return frand.Float64()
}

func (frandSource) Intn(n int) int {
	return frand.Intn(n)
}
