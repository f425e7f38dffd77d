package engine

import (
	"math/rand"
	"time"
)

// NewRNG returns a generator seeded with seed, or with the clock when seed
// is 0. Every random step of a battle draws from the one generator passed
// down explicitly, so replaying a seed replays the battle.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RangeInt draws uniformly from [lo, hi]. hi < lo returns lo.
func RangeInt(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance is a Bernoulli trial with probability p.
func Chance(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// Categorical picks an index with probability proportional to its weight
// when the weights sum to 1. Mass left over from rounding lands on the
// last index.
func Categorical(r *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	u := r.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Pick returns a uniformly chosen element, or the zero value and false.
func Pick[T any](r *rand.Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.Intn(len(items))], true
}

func Shuffle[T any](r *rand.Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
