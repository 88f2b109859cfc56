// Package redundancy implements the greedy minimal-station-subset reducer
// of §4.6.
package redundancy

import (
	"context"
	"sort"

	"chalet/internal/feasibility"
	"chalet/internal/model"
	"chalet/internal/subgraph"
)

// PairContext bundles what Reduce needs per pair: its subgraph and bounds.
type PairContext struct {
	Sub         *subgraph.Subgraph
	MaxRoadTime float64
	MaxTime     float64
}

// Reduce takes a candidate-station solution set S and greedily drops any
// station whose removal still leaves every currently-covered pair covered,
// substituting each affected pair's path as it goes. Returns S' subseteq S
// with the same covered-pair set. Iteration order over S is deterministic
// (ascending id) so results are reproducible.
func Reduce(ctx context.Context, s []int64, pairs []PairContext, nodes map[int64]model.Node) []int64 {
	selected := make(map[int64]bool, len(s))
	for _, u := range s {
		selected[u] = true
	}

	// Seed: compute an initial feasible path per feasible pair using S.
	pathsFor := func(sel map[int64]bool) map[int]bool {
		covered := make(map[int]bool, len(pairs))
		for i, pc := range pairs {
			if pc.Sub.Empty() {
				continue
			}
			ok, _ := feasibility.Covered(ctx, pc.Sub, nodes, sel, pc.MaxRoadTime, pc.MaxTime)
			covered[i] = ok
		}
		return covered
	}
	baseline := pathsFor(selected)

	ordered := make([]int64, len(s))
	copy(ordered, s)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, u := range ordered {
		if !selected[u] {
			continue
		}
		trial := make(map[int64]bool, len(selected))
		for k, v := range selected {
			trial[k] = v
		}
		delete(trial, u)

		trialCovered := pathsFor(trial)
		allPreserved := true
		for i, wasCovered := range baseline {
			if wasCovered && !trialCovered[i] {
				allPreserved = false
				break
			}
		}
		if allPreserved {
			selected = trial
		}
	}

	out := make([]int64, 0, len(selected))
	for u := range selected {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
