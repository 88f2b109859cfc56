// Package preprocess implements the arc preprocessor (C2): self-loop
// insertion, unknown-endpoint dropping, the dense (tail,head) lookup map,
// range filtering, fuel-time assignment via the battery charge curve, and
// break-time attachment.
package preprocess

import "chalet/internal/model"

// Lookup is the dense (tail,head) -> (road_time, distance) map with an
// (∞,∞) sentinel fallback, per §3's "Time/distance map".
type Lookup struct {
	entries map[int64]model.LookupEntry
}

// NewLookup builds an empty Lookup.
func NewLookup() *Lookup {
	return &Lookup{entries: make(map[int64]model.LookupEntry)}
}

// Set records the direct (tail,head) entry.
func (l *Lookup) Set(tail, head int64, roadTime, distance float64) {
	l.entries[model.PackKey(tail, head)] = model.LookupEntry{RoadTime: roadTime, Distance: distance}
}

// Get returns the recorded entry for (tail,head), or the (∞,∞) sentinel.
func (l *Lookup) Get(tail, head int64) model.LookupEntry {
	if e, ok := l.entries[model.PackKey(tail, head)]; ok {
		return e
	}
	return model.InfiniteEntry
}

// Time returns just the road-time component of Get.
func (l *Lookup) Time(tail, head int64) float64 {
	return l.Get(tail, head).RoadTime
}

// Distance returns just the distance component of Get.
func (l *Lookup) Distance(tail, head int64) float64 {
	return l.Get(tail, head).Distance
}

// BuildLookup constructs the dense lookup map from the raw arc list, plus a
// zero-weight self-loop per node (step 1 of §4.2) so the map is total over
// every known node id.
func BuildLookup(nodes []model.Node, arcs []model.Arc) *Lookup {
	l := NewLookup()
	for _, n := range nodes {
		l.Set(n.ID, n.ID, 0, 0)
	}
	for _, a := range arcs {
		l.Set(a.Tail, a.Head, a.RoadTime, a.Distance)
	}
	return l
}
