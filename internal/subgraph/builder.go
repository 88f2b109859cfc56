// Package subgraph builds the per-OD-pair pruned DAG and performs
// candidate-node splitting (§4.4), turning a node-vertex-cover problem into
// an arc-vertex-cover problem the MIP orchestrator can cut against.
package subgraph

import (
	"context"

	"chalet/internal/graph"
	"chalet/internal/model"
	"chalet/internal/preprocess"
)

// Subgraph is one OD pair's pruned, split directed view of the network.
type Subgraph struct {
	G          *graph.Graph
	Origin     int64
	Destination int64
	// Candidates lists, in ascending id order, every candidate station node
	// present in G (after splitting, both u and -u exist for each).
	Candidates []int64
}

// Empty reports whether construction found the pair structurally
// unreachable (origin/destination absent, or either bound globally
// violated).
func (s *Subgraph) Empty() bool {
	return s == nil || s.G == nil || s.G.NumNodes() == 0
}

// Build runs the full §4.4 pipeline for one pair: irrelevant-site removal,
// lower-bound filtering, subgraph construction, triangle pruning, path-bound
// pruning, zero-degree cleanup, and candidate-node splitting. It reads only
// its arguments and allocates a fresh Subgraph, matching the share-nothing
// contract required for parallel use across pairs (§5).
func Build(ctx context.Context, pair model.ODPair, pre *preprocess.Result, p preprocess.Params) *Subgraph {
	o, d := pair.OriginID, pair.DestinationID
	if _, ok := pre.Nodes[o]; !ok {
		return &Subgraph{}
	}
	if _, ok := pre.Nodes[d]; !ok {
		return &Subgraph{}
	}

	// Step 1: irrelevant-site removal - drop arcs incident to a site != {o,d}.
	relevant := make([]model.Arc, 0, len(pre.Arcs))
	for _, a := range pre.Arcs {
		tail, head := pre.Nodes[a.Tail], pre.Nodes[a.Head]
		if tail.Type == model.NodeTypeSite && a.Tail != o && a.Tail != d {
			continue
		}
		if head.Type == model.NodeTypeSite && a.Head != o && a.Head != d {
			continue
		}
		relevant = append(relevant, a)
	}

	// Step 2: lower-bound filter.
	kept := make([]model.Arc, 0, len(relevant))
	for _, a := range relevant {
		tOU := pre.Lookup.Time(o, a.Tail)
		dOU := pre.Lookup.Distance(o, a.Tail)
		tVD := pre.Lookup.Time(a.Head, d)
		dVD := pre.Lookup.Distance(a.Head, d)

		roadLB := tOU + a.RoadTime + tVD
		distLB := dOU + a.Distance + dVD
		timeLB := roadLB + a.BreakTime + distLB*pre.FuelTimeBound/p.TruckRange

		if timeLB > pair.MaxTime || roadLB > pair.MaxRoadTime {
			continue
		}
		kept = append(kept, a)
	}

	// Step 3: build the directed subgraph.
	g := graph.New()
	g.AddNode(o, nodeCost(pre, o))
	g.AddNode(d, nodeCost(pre, d))
	for _, a := range kept {
		if !g.HasNode(a.Tail) {
			g.AddNode(a.Tail, nodeCost(pre, a.Tail))
		}
		if !g.HasNode(a.Head) {
			g.AddNode(a.Head, nodeCost(pre, a.Head))
		}
		g.AddArc(a.Tail, a.Head, a.RoadTime, a.Distance, a.RoadTime+a.FuelTime+a.BreakTime)
	}

	if !g.HasNode(o) || !g.HasNode(d) || g.OutDegree(o)+g.InDegree(o) == 0 {
		return &Subgraph{}
	}

	view := graph.NewView(g)

	// Step 4: triangle pruning at endpoints.
	succO := make(map[int64]bool)
	for _, e := range g.Out(o) {
		succO[e.To] = true
	}
	predD := make(map[int64]bool)
	for _, e := range g.In(d) {
		predD[e.To] = true
	}
	g = pruneTriangles(g, o, d, succO, predD)
	view = graph.NewView(g)

	// Step 5: path-bound pruning via forward/reverse Dijkstra under both
	// road_time and total_time.
	roadFromO := graph.SingleSource(ctx, view, o, graph.RoadTimeWeight)
	roadToD := graph.SingleSourceReverse(ctx, view, d, graph.RoadTimeWeight)
	timeFromO := graph.SingleSource(ctx, view, o, graph.FullTimeWeight)
	timeToD := graph.SingleSourceReverse(ctx, view, d, graph.FullTimeWeight)

	if graph.Get(roadFromO, d) > pair.MaxRoadTime || graph.Get(timeFromO, d) > pair.MaxTime {
		return &Subgraph{}
	}

	g2 := graph.New()
	for _, id := range g.Nodes() {
		g2.AddNode(id, g.Cost(id))
	}
	for _, u := range g.Nodes() {
		for _, e := range g.Out(u) {
			roadSum := graph.Get(roadFromO, u) + e.RoadTime + graph.Get(roadToD, e.To)
			timeSum := graph.Get(timeFromO, u) + e.FullTime + graph.Get(timeToD, e.To)
			if roadSum > pair.MaxRoadTime || timeSum > pair.MaxTime {
				continue
			}
			g2.AddArc(u, e.To, e.RoadTime, e.Distance, e.FullTime)
		}
	}
	g = g2

	// Step 6: single-pass removal of zero-degree non-endpoint nodes.
	g = removeIsolates(g, o, d)

	if !g.HasNode(o) || !g.HasNode(d) {
		return &Subgraph{}
	}

	// Step 8: candidate-node split.
	g, candidates := split(g, pre)

	return &Subgraph{G: g, Origin: o, Destination: d, Candidates: candidates}
}

func nodeCost(pre *preprocess.Result, id int64) float64 {
	if n, ok := pre.Nodes[id]; ok {
		return n.Cost
	}
	return 0
}

// pruneTriangles removes every arc (u,v) where u != o and v is a direct
// successor of o, and where v != d and u is a direct predecessor of d — the
// triangle inequality argument of §4.4 step 4.
func pruneTriangles(g *graph.Graph, o, d int64, succO, predD map[int64]bool) *graph.Graph {
	g2 := graph.New()
	for _, id := range g.Nodes() {
		g2.AddNode(id, g.Cost(id))
	}
	for _, u := range g.Nodes() {
		for _, e := range g.Out(u) {
			if u != o && succO[e.To] {
				continue
			}
			if e.To != d && predD[u] {
				continue
			}
			g2.AddArc(u, e.To, e.RoadTime, e.Distance, e.FullTime)
		}
	}
	return g2
}

// removeIsolates drops non-endpoint nodes with zero in- or out-degree, one
// pass, matching the original's single-pass resolution of this open
// question (see DESIGN.md).
func removeIsolates(g *graph.Graph, o, d int64) *graph.Graph {
	keep := make(map[int64]bool)
	for _, id := range g.Nodes() {
		if id == o || id == d {
			keep[id] = true
			continue
		}
		if g.InDegree(id) > 0 && g.OutDegree(id) > 0 {
			keep[id] = true
		}
	}
	g2 := graph.New()
	for id := range keep {
		g2.AddNode(id, g.Cost(id))
	}
	for _, u := range g.Nodes() {
		if !keep[u] {
			continue
		}
		for _, e := range g.Out(u) {
			if keep[e.To] {
				g2.AddArc(u, e.To, e.RoadTime, e.Distance, e.FullTime)
			}
		}
	}
	return g2
}

// split performs the candidate-node split of §4.4 step 8: every candidate
// node u (cost > 0, both in- and out-degree > 0) gets an auxiliary -u; all
// of u's outgoing arcs are redirected to originate at -u, and a single
// zero-weight arc (u,-u) is added.
func split(g *graph.Graph, pre *preprocess.Result) (*graph.Graph, []int64) {
	var candidates []int64
	for _, id := range g.Nodes() {
		n, ok := pre.Nodes[id]
		if ok && n.IsCandidate() && g.InDegree(id) > 0 && g.OutDegree(id) > 0 {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) == 0 {
		return g, nil
	}

	isSplit := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		isSplit[c] = true
	}

	g2 := graph.New()
	for _, id := range g.Nodes() {
		g2.AddNode(id, g.Cost(id))
	}
	for _, c := range candidates {
		g2.AddNode(model.AuxiliaryID(c), 0)
	}

	for _, u := range g.Nodes() {
		for _, e := range g.Out(u) {
			from := u
			if isSplit[u] {
				from = model.AuxiliaryID(u)
			}
			g2.AddArc(from, e.To, e.RoadTime, e.Distance, e.FullTime)
		}
	}
	for _, c := range candidates {
		g2.AddArc(c, model.AuxiliaryID(c), 0, 0, 0)
	}

	return g2, candidates
}
