package sampling

import (
	"fmt"
	"sort"
)

// Weighted pairs a value with its relative weight.
type Weighted[T any] struct {
	Value  T       `yaml:"value"`
	Weight float64 `yaml:"weight"`
}

// Categorical draws values proportionally to their weights.
type Categorical[T any] struct {
	values     []T
	cumulative []float64
}

// NewCategorical validates the table and precomputes cumulative weights.
// Weights need not sum to one.
func NewCategorical[T any](table []Weighted[T]) (*Categorical[T], error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("sampling: empty weight table")
	}
	c := &Categorical[T]{
		values:     make([]T, 0, len(table)),
		cumulative: make([]float64, 0, len(table)),
	}
	total := 0.0
	for i, entry := range table {
		if entry.Weight < 0 {
			return nil, fmt.Errorf("sampling: weight %d is negative", i)
		}
		total += entry.Weight
		c.values = append(c.values, entry.Value)
		c.cumulative = append(c.cumulative, total)
	}
	if total <= 0 {
		return nil, fmt.Errorf("sampling: weights sum to zero")
	}
	return c, nil
}

// Draw returns one value.
func (c *Categorical[T]) Draw(r Rand) T {
	total := c.cumulative[len(c.cumulative)-1]
	x := r.Float64() * total
	i := sort.Search(len(c.cumulative), func(i int) bool { return c.cumulative[i] > x })
	if i == len(c.values) {
		i = len(c.values) - 1
	}
	return c.values[i]
}

// Values lists the table's values in declaration order.
func (c *Categorical[T]) Values() []T {
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}
