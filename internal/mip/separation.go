package mip

import (
	"context"

	"chalet/internal/graph"
	"chalet/internal/model"
)

// seedCutsDirectional implements §4.7's "Initial cut seeding": grow an
// out-component from the source (or, if !forward, an in-component into the
// destination) using only non-candidate nodes plus candidates already
// folded into the growing set; each time the opposite endpoint is still
// unreached, the node-boundary is a valid separator, which is added and
// whose candidates are then treated as usable for the next round.
func seedCutsDirectional(g *graph.Graph, o, d int64, candidateSet map[int64]bool, forward bool) [][]int64 {
	grown := make(map[int64]bool)
	var cuts [][]int64

	for round := 0; round <= len(candidateSet); round++ {
		usable := func(id int64) bool {
			if !model.IsAuxiliary(id) {
				return true
			}
			base := -id
			if !candidateSet[base] {
				return true
			}
			return grown[base]
		}
		view := graph.View{G: g, Usable: usable}

		var reach map[int64]bool
		var boundary []int64
		if forward {
			reach = graph.Reachable(view, o)
			if reach[d] {
				return cuts
			}
			boundary = graph.Boundary(g, reach)
		} else {
			reach = graph.ReachableReverse(view, d)
			if reach[o] {
				return cuts
			}
			boundary = graph.BoundaryReverse(g, reach)
		}

		vars, grewAny := foldBoundary(boundary, grown)
		if len(vars) == 0 {
			return cuts
		}
		cuts = append(cuts, vars)
		if !grewAny {
			return cuts
		}
	}
	return cuts
}

// foldBoundary extracts the candidate ids named by a set of boundary node
// ids (every boundary node here must be an auxiliary node of some candidate
// — a non-auxiliary entry would mean a real node is gated, which can only
// happen if the caller's usable predicate is wrong) and folds them into
// grown, reporting whether any were new.
func foldBoundary(boundary []int64, grown map[int64]bool) ([]int64, bool) {
	var vars []int64
	grewAny := false
	for _, b := range boundary {
		if !model.IsAuxiliary(b) {
			panic("mip: separator boundary contains a non-candidate node")
		}
		base := -b
		vars = append(vars, base)
		if !grown[base] {
			grown[base] = true
			grewAny = true
		}
	}
	return vars, grewAny
}

// integerSeparate implements the two-sided construction of §4.7(a)'s
// integer-separation step: an active-node DFS from the origin yields the
// origin-closest separator; a reverse DFS from the destination, excluding
// that separator's entering candidates, yields the destination-closest one.
// Returns up to two deduplicated candidate-id cuts.
func integerSeparate(g *graph.Graph, o, d int64, active func(int64) bool) [][]int64 {
	view := graph.View{G: g, Usable: active}
	reachO := graph.Reachable(view, o)
	if reachO[d] {
		return nil
	}
	boundaryO := graph.Boundary(g, reachO)

	exclude := make(map[int64]bool, len(boundaryO))
	for _, b := range boundaryO {
		exclude[b] = true
	}
	view2 := graph.View{G: g, Usable: func(id int64) bool { return active(id) && !exclude[id] }}
	reachD := graph.ReachableReverse(view2, d)
	boundaryD := graph.BoundaryReverse(g, reachD)

	varsO, _ := foldBoundary(boundaryO, map[int64]bool{})
	varsD, _ := foldBoundary(boundaryD, map[int64]bool{})

	var out [][]int64
	if len(varsO) > 0 {
		out = append(out, varsO)
	}
	if len(varsD) > 0 && !sameVarSet(varsO, varsD) {
		out = append(out, varsD)
	}
	return out
}

func sameVarSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}

// timeSeparate is integerSeparate restricted to nodes that could still
// complete the trip within both time bounds, per §4.7(a)'s time-separator
// step: a node u is excluded once time_from_orig[u] plus its best
// completion time to the destination would exceed either bound.
func timeSeparate(g *graph.Graph, o, d int64, active func(int64) bool, maxRoadTime, maxTime float64) [][]int64 {
	ctx := context.Background()
	view := graph.View{G: g, Usable: active}
	roadFromO := graph.SingleSource(ctx, view, o, graph.RoadTimeWeight)
	roadToD := graph.SingleSourceReverse(ctx, view, d, graph.RoadTimeWeight)
	timeFromO := graph.SingleSource(ctx, view, o, graph.FullTimeWeight)
	timeToD := graph.SingleSourceReverse(ctx, view, d, graph.FullTimeWeight)

	stillFeasible := func(id int64) bool {
		if !active(id) {
			return false
		}
		if graph.Get(roadFromO, id)+graph.Get(roadToD, id) > maxRoadTime+graph.Epsilon {
			return false
		}
		if graph.Get(timeFromO, id)+graph.Get(timeToD, id) > maxTime+graph.Epsilon {
			return false
		}
		return true
	}
	return integerSeparate(g, o, d, stillFeasible)
}

// fractionalSeparate implements §4.7(a)'s fractional separation via min
// s-t cut: arc capacity c(u,-u) = xVal(u), every other arc uncapacitated.
// Returns the candidate ids whose split arc crosses the cut (the source
// side does not extend across it) along with the cut value, or ok=false if
// no candidate exists to separate on (already fully connected).
func fractionalSeparate(g *graph.Graph, candidates []int64, xVal func(int64) float64, origin, destination int64) (vars []int64, value float64, ok bool) {
	fn := graph.NewFlowNetwork()
	candSet := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		candSet[c] = true
	}
	for _, u := range g.Nodes() {
		for _, e := range g.Out(u) {
			cap := model.Infinity
			if candSet[u] && e.To == model.AuxiliaryID(u) {
				cap = xVal(u)
			}
			fn.AddEdge(u, e.To, cap)
		}
	}
	value, sourceSide := fn.MinCut(origin, destination)
	if value >= model.Infinity {
		return nil, value, false
	}
	for _, c := range candidates {
		if sourceSide[c] && !sourceSide[model.AuxiliaryID(c)] {
			vars = append(vars, c)
		}
	}
	return vars, value, len(vars) > 0
}
