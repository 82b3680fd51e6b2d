// Package sampling holds the random primitives shared by the generators:
// an injectable random source, multiplicity-biased pools, categorical draws
// over weight tables and a bounded date window.
package sampling

import (
	"math/rand/v2"
	"time"
)

// Rand is the random source every generator draws from.
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
	Float64() float64
}

// NewRand returns a PCG-backed source. A nil seed draws from process
// entropy; an explicit seed makes every downstream draw reproducible.
func NewRand(seed *int64) Rand {
	var s uint64
	if seed != nil {
		s = uint64(*seed)
	} else {
		s = uint64(time.Now().UnixNano()) ^ rand.Uint64()
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Seeded is NewRand with a literal seed.
func Seeded(seed int64) Rand {
	return NewRand(&seed)
}

// Bernoulli reports true with probability p.
func Bernoulli(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// IntBetween draws uniformly from [lo, hi]; hi below lo yields lo.
func IntBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// SampleDistinct returns min(n, len(items)) distinct elements chosen
// uniformly without replacement. The input slice is left untouched.
func SampleDistinct[T any](r Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = items[idx[i]]
	}
	return out
}
