package sim

import (
	"math/rand"
	"time"
)

// Entropy is the process-wide randomness source for the scenario built-ins.
// The engine itself never draws from it; only the DSL front end does, so a
// seeded Entropy makes a scripted run reproducible end to end.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type Entropy struct {
	rng *rand.Rand
}

// NewEntropy creates an Entropy from a seed. Seed 0 picks a wall-clock seed,
// making the run intentionally non-reproducible.
func NewEntropy(seed int64) *Entropy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Entropy{rng: rand.New(rand.NewSource(seed))}
}

// Natural draws a uniform integer in the inclusive range [lo, hi].
// A degenerate range (hi < lo) collapses to lo. The full-width range
// [0, MaxUint64] is served directly from the generator.
func (e *Entropy) Natural(lo, hi uint64) uint64 {
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	if span == 0 { // hi-lo spans the whole uint64 domain
		return e.rng.Uint64()
	}
	return lo + e.rng.Uint64()%span
}

// Float draws a uniform float in [lo, hi).
func (e *Entropy) Float(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

// ResourceUsage draws the per-burst core share, clamped below at 0.01.
func (e *Entropy) ResourceUsage() float64 {
	u := e.rng.Float64()
	if u < 0.01 {
		return 0.01
	}
	return u
}
