package engine

import (
	"math/rand"
	"time"
)

// Random is the engine's explicit PRNG collaborator (see spec §9:
// "Expose the PRNG as an explicit collaborator to the engine"). Unlike a
// package-level default generator, every Simulation owns its own instance so
// that a host running many simulations concurrently never shares mutable
// random state across them (§5).
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a PRNG seeded from the current time in nanoseconds.
func NewRandom() *Random {
	return &Random{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRandom creates a PRNG with an explicit seed, useful for tests.
func NewSeededRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform integer in [0,n).
func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

// Float64 returns a uniform float64 in [0.0,1.0).
func (r *Random) Float64() float64 {
	return r.rng.Float64()
}

// RollDie returns a uniform integer in [1,sides].
func (r *Random) RollDie(sides int) int {
	if sides <= 0 {
		return 0
	}
	return r.Intn(sides) + 1
}

// Shuffle randomizes the order of a slice in place.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// SampleIndices picks up to k distinct indices from [0,n) uniformly without
// replacement, used by area-spell target selection (§4.2). If k >= n every
// index is returned.
func (r *Random) SampleIndices(n, k int) []int {
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	r.Shuffle(n, func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:k]
}
