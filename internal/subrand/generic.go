package subrand

import "github.com/MJE43/trainerrand/internal/engine"

// Generic cycles through a fixed pool in shuffled order, reshuffling each time
// the pool is exhausted. The first shuffle happens on the first draw.
type Generic struct {
	rng   engine.Rand
	order []int
	pos   int
}

// NewGeneric creates a picker over a copy of pool.
func NewGeneric(rng engine.Rand, pool []int) *Generic {
	return &Generic{
		rng:   rng,
		order: append([]int(nil), pool...),
		pos:   len(pool),
	}
}

// Next returns the next pooled value.
func (g *Generic) Next() (int, bool) {
	if len(g.order) == 0 {
		return 0, false
	}
	if g.pos >= len(g.order) {
		Shuffle(g.rng, g.order)
		g.pos = 0
	}
	v := g.order[g.pos]
	g.pos++
	return v, true
}

// NextClass implements ClassPicker.
func (g *Generic) NextClass() (int, bool) { return g.Next() }

// Len returns the pool size.
func (g *Generic) Len() int { return len(g.order) }

// Shuffle permutes values in place, drawing once per position.
func Shuffle(rng engine.Rand, values []int) {
	n := len(values)
	for i := 0; i < n; i++ {
		r := i + rng.NextInt(n-i)
		values[i], values[r] = values[r], values[i]
	}
}
