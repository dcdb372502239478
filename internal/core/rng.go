package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
// Each simulation run owns its own RNG; it is not safe for concurrent use.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), splitMix64(uint64(seed))))}
}

// Spin returns +1 or -1 with equal probability.
func (r *RNG) Spin() int8 {
	if r.r.IntN(2) == 1 {
		return -1
	}
	return 1
}

// IntN returns a uniform int in [0, n).
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Float64 returns a uniform float in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// FillSpins fills the buffer with independent, uniformly drawn ±1 values.
func FillSpins(r *RNG, buf []int8) {
	for i := range buf {
		buf[i] = r.Spin()
	}
}

// DeriveSeed mixes a base seed with a stream index so sibling runs get
// statistically independent generators.
func DeriveSeed(base int64, stream int) int64 {
	return int64(splitMix64(uint64(base) ^ splitMix64(uint64(stream)+1)))
}

func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
