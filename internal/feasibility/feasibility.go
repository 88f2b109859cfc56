// Package feasibility implements the coverage oracle of §4.5: given a
// subgraph and a set of active stations, decide whether the pair is
// time-feasible.
package feasibility

import (
	"context"

	"chalet/internal/csp"
	"chalet/internal/graph"
	"chalet/internal/model"
	"chalet/internal/subgraph"
)

// IsUsable returns the node predicate "real node OR non-candidate OR
// currently selected" for the given subgraph: site, auxiliary, and
// pre-existing-station nodes are always usable; a candidate node is usable
// only if it appears in selected.
func IsUsable(sub *subgraph.Subgraph, nodes map[int64]model.Node, selected map[int64]bool) func(int64) bool {
	candidateSet := make(map[int64]bool, len(sub.Candidates))
	for _, c := range sub.Candidates {
		candidateSet[c] = true
	}
	return func(id int64) bool {
		if !candidateSet[id] {
			return true
		}
		return selected[id]
	}
}

// View builds the usability-filtered graph view for sub given the active
// selection.
func View(sub *subgraph.Subgraph, nodes map[int64]model.Node, selected map[int64]bool) graph.View {
	return graph.View{G: sub.G, Usable: IsUsable(sub, nodes, selected)}
}

// Covered reports whether a time-feasible path exists from origin to
// destination in sub under the given active station selection, and returns
// the path if so.
func Covered(ctx context.Context, sub *subgraph.Subgraph, nodes map[int64]model.Node, selected map[int64]bool, maxRoadTime, maxTime float64) (bool, []int64) {
	if sub.Empty() {
		return false, nil
	}
	v := View(sub, nodes, selected)
	res := csp.TimeFeasiblePath(ctx, v, sub.Origin, sub.Destination, maxRoadTime, maxTime)
	return res.Path != nil, res.Path
}
