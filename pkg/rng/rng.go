// Package rng provides the seeded random source the interpreter draws
// from. The same seed always produces the same draw sequence, which is
// what makes level generation reproducible end to end.
package rng

import "math/rand/v2"

// Source implements vm.RandSource over a PCG generator.
type Source struct {
	r *rand.Rand
}

// New returns a source seeded with the given value.
func New(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Rn2 draws one uniform integer in [0, n). n must be positive.
func (s *Source) Rn2(n int) int {
	return s.r.IntN(n)
}
