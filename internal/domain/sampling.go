package domain

import (
	"math"
	"math/rand"
	"sort"
)

// MinSamplingWeight is the floor applied to non-positive scores before the
// weighted draw. Zero-engagement posts keep a small selection probability
// instead of being permanently excluded from personalized feeds.
const MinSamplingWeight = 0.01

// WeightedShuffle returns a weighted-random permutation of indices [0, n)
// using each weight as an unnormalized selection probability. It implements
// the Efraimidis-Spirakis exponential-key method for weighted sampling
// without replacement: each item draws key = -ln(u)/w and the permutation is
// the items sorted by ascending key. An item with twice the weight is twice
// as likely to appear first, and no item is repeated or dropped.
//
// Weights at or below zero are floored to MinSamplingWeight.
func WeightedShuffle(weights []float64, rng *rand.Rand) []int {
	n := len(weights)
	keys := make([]float64, n)
	order := make([]int, n)

	for i, w := range weights {
		if w <= 0 {
			w = MinSamplingWeight
		}
		// rand.Float64 is in [0, 1); shift away from zero so ln is finite.
		u := 1 - rng.Float64()
		keys[i] = -math.Log(u) / w
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})

	return order
}
