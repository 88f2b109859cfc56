// Package graph provides the directed-graph view used by the CSP engine,
// subgraph builder, and MIP separators: an adjacency structure with both
// forward and reverse edge lists, a filter predicate view instead of graph
// materialization, and a deterministic neighbor/node ordering so every
// algorithm built on it is reproducible run to run.
package graph

import (
	"math"
	"sort"
)

// Epsilon is the tolerance for floating point comparisons across the graph
// algorithms.
const Epsilon = 1e-9

// Infinity is positive infinity: the cost reported for an unreachable target
// and the unbounded value used by the distance and flow computations.
var Infinity = math.Inf(1)

// Edge is a directed edge with two independently tracked weights (road time
// and total time, or any other pair a caller wants to bound/minimize) plus a
// capacity used by the min-cut separator.
type Edge struct {
	To       int64
	RoadTime float64
	Distance float64
	FullTime float64
	Capacity float64 // used only by min-cut computations; 0 elsewhere
}

// Graph is a directed graph with explicit reverse adjacency for backward
// traversal (reverse Dijkstra, reverse DFS for separator construction).
// It is not safe for concurrent use, reads included: Nodes refreshes a cached
// sorted id list.
type Graph struct {
	nodes   map[int64]bool
	out     map[int64][]Edge
	in      map[int64][]Edge
	cost    map[int64]float64
	sorted  []int64
	dirty   bool
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int64]bool),
		out:   make(map[int64][]Edge),
		in:    make(map[int64][]Edge),
		cost:  make(map[int64]float64),
	}
}

// AddNode registers a node with its selection cost (0 for sites/auxiliaries
// and pre-existing stations).
func (g *Graph) AddNode(id int64, cost float64) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.dirty = true
	}
	g.cost[id] = cost
}

// HasNode reports whether id was registered via AddNode.
func (g *Graph) HasNode(id int64) bool {
	return g.nodes[id]
}

// Cost returns the registered selection cost of a node (0 if never set).
func (g *Graph) Cost(id int64) float64 {
	return g.cost[id]
}

// SetCost overrides the registered cost of a node in place. Used sparingly;
// callers doing temporary overrides (the primal heuristic) should prefer an
// external cost-vector rather than mutating the graph.
func (g *Graph) SetCost(id int64, cost float64) {
	g.cost[id] = cost
}

// AddArc adds a directed edge. Both endpoints must already be registered via
// AddNode.
func (g *Graph) AddArc(tail, head int64, roadTime, distance, fullTime float64) {
	g.out[tail] = append(g.out[tail], Edge{To: head, RoadTime: roadTime, Distance: distance, FullTime: fullTime})
	g.in[head] = append(g.in[head], Edge{To: tail, RoadTime: roadTime, Distance: distance, FullTime: fullTime})
}

// Out returns the outgoing edges of u in insertion order (deterministic).
func (g *Graph) Out(u int64) []Edge {
	return g.out[u]
}

// In returns the incoming edges of u (edge.To is the predecessor) in
// insertion order.
func (g *Graph) In(u int64) []Edge {
	return g.in[u]
}

// OutDegree and InDegree support the zero-degree pruning step of §4.4.
func (g *Graph) OutDegree(u int64) int { return len(g.out[u]) }
func (g *Graph) InDegree(u int64) int  { return len(g.in[u]) }

// Nodes returns every registered node id in deterministic (sorted) order.
func (g *Graph) Nodes() []int64 {
	if g.dirty || g.sorted == nil {
		g.sorted = g.sorted[:0]
		for id := range g.nodes {
			g.sorted = append(g.sorted, id)
		}
		sort.Slice(g.sorted, func(i, j int) bool { return g.sorted[i] < g.sorted[j] })
		g.dirty = false
	}
	return g.sorted
}

// NumNodes returns the count of registered nodes.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Weight selects one of an Edge's two bounded dimensions (road time or full
// time) for use as a generic weight function by the shortest-path routines.
type Weight func(e Edge) float64

// RoadTimeWeight and FullTimeWeight are the two weight functions C3's LARAC
// procedure alternates between.
func RoadTimeWeight(e Edge) float64 { return e.RoadTime }
func FullTimeWeight(e Edge) float64 { return e.FullTime }

// View wraps a Graph with a node predicate, restricting traversal to usable
// nodes without materializing a filtered copy (per Design Notes §9).
type View struct {
	G        *Graph
	Usable   func(id int64) bool
}

// NewView returns a View with no restriction (every graph node usable).
func NewView(g *Graph) View {
	return View{G: g, Usable: func(int64) bool { return true }}
}

// Out returns u's outgoing edges whose head is usable.
func (v View) Out(u int64) []Edge {
	if !v.Usable(u) {
		return nil
	}
	edges := v.G.Out(u)
	filtered := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if v.Usable(e.To) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// In returns u's incoming edges whose source is usable.
func (v View) In(u int64) []Edge {
	if !v.Usable(u) {
		return nil
	}
	edges := v.G.In(u)
	filtered := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if v.Usable(e.To) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
