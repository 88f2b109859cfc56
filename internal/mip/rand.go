package mip

import "math/rand"

// randSource is a thin wrapper so the work-throttling exploration step can
// be reseeded deterministically per (node_id, round) as §4.7 specifies,
// rather than drawing from a single mutable stream across the whole search.
type randSource struct {
	r *rand.Rand
}

func newRandSource(seed int64) randSource {
	return randSource{r: rand.New(rand.NewSource(seed))}
}

func (s randSource) reseed(seed int64) randSource {
	return newRandSource(seed)
}

func (s randSource) float64() float64 {
	return s.r.Float64()
}
