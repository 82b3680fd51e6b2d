package sampling

import "errors"

// ErrEmptyPool is returned when a pool is built from no entities.
var ErrEmptyPool = errors.New("sampling: pool has no entities")

// Bias promotes the first Top entities of a seed list to Multiplier copies.
type Bias struct {
	Top        int `yaml:"top"`
	Multiplier int `yaml:"multiplier"`
}

// Pool is a multiset where biased entities appear several times, so a
// uniform pick is a weighted pick over the distinct entities.
type Pool[T any] struct {
	entries []T
	top     []T
}

// BuildPool expands items according to bias. Top larger than the input is
// clamped; a multiplier below one counts as one.
func BuildPool[T any](items []T, bias Bias) (*Pool[T], error) {
	if len(items) == 0 {
		return nil, ErrEmptyPool
	}
	k := bias.Top
	if k < 0 {
		k = 0
	}
	if k > len(items) {
		k = len(items)
	}
	m := bias.Multiplier
	if m < 1 {
		m = 1
	}

	entries := make([]T, 0, k*m+len(items)-k)
	for _, item := range items[:k] {
		for i := 0; i < m; i++ {
			entries = append(entries, item)
		}
	}
	entries = append(entries, items[k:]...)

	top := make([]T, k)
	copy(top, items[:k])
	return &Pool[T]{entries: entries, top: top}, nil
}

// Pick draws one entry uniformly from the expanded pool.
func (p *Pool[T]) Pick(r Rand) T {
	return p.entries[r.IntN(len(p.entries))]
}

// Top returns the distinct promoted entities in seed order.
func (p *Pool[T]) Top() []T {
	out := make([]T, len(p.top))
	copy(out, p.top)
	return out
}

// Len is the size of the expanded pool.
func (p *Pool[T]) Len() int {
	return len(p.entries)
}
