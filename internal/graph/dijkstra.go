package graph

import (
	"container/heap"
	"context"
)

// =============================================================================
// Shortest path (bidirectional Dijkstra)
// =============================================================================
//
// shortest_path(g, s, t, w) per §4.3: bidirectional Dijkstra over a single
// weight function w, non-negative by assumption. Returns (nil, +Inf) on no
// path or a missing endpoint.
//
// Time Complexity: O((V + E) log V)
// Space Complexity: O(V)
// =============================================================================

type pqItem struct {
	node  int64
	dist  float64
	index int
}

type pq []*pqItem

func (q pq) Len() int { return len(q) }
func (q pq) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q pq) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *pq) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *pq) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

const contextCheckInterval = 100

// Result is the outcome of a point-to-point shortest-path query.
type Result struct {
	Path []int64
	Cost float64
}

var unreachable = Result{Path: nil, Cost: Infinity}

// ShortestPath finds the minimum-w path from s to t. Returns an unreachable
// Result if either endpoint is missing from the view or no path exists.
func ShortestPath(ctx context.Context, v View, s, t int64, w Weight) Result {
	if !v.G.HasNode(s) || !v.G.HasNode(t) {
		return unreachable
	}
	if s == t {
		return Result{Path: []int64{s}, Cost: 0}
	}
	return bidirectionalDijkstra(ctx, v, s, t, w)
}

type side struct {
	dist   map[int64]float64
	parent map[int64]int64
	settled map[int64]bool
	queue  pq
	items  map[int64]*pqItem
}

func newSide(src int64) *side {
	s := &side{
		dist:    map[int64]float64{src: 0},
		parent:  map[int64]int64{src: -1},
		settled: make(map[int64]bool),
		items:   make(map[int64]*pqItem),
	}
	item := &pqItem{node: src, dist: 0}
	s.queue = pq{item}
	heap.Init(&s.queue)
	s.items[src] = item
	return s
}

func (s *side) relax(u int64, edges []Edge, w Weight) {
	du := s.dist[u]
	for _, e := range edges {
		nd := du + w(e)
		cur, ok := s.dist[e.To]
		if !ok || nd < cur-Epsilon {
			s.dist[e.To] = nd
			s.parent[e.To] = u
			if item, exists := s.items[e.To]; exists && item.index >= 0 {
				item.dist = nd
				heap.Fix(&s.queue, item.index)
			} else {
				item := &pqItem{node: e.To, dist: nd}
				heap.Push(&s.queue, item)
				s.items[e.To] = item
			}
		}
	}
}

// bidirectionalDijkstra alternates expanding the smaller frontier from s
// (via forward edges) and from t (via reverse edges), tracking the best
// meeting cost mu, and stops once neither frontier can improve on mu.
func bidirectionalDijkstra(ctx context.Context, v View, s, t int64, w Weight) Result {
	fwd := newSide(s)
	bwd := newSide(t)

	mu := Infinity
	var meet int64
	met := false

	iterations := 0
	for fwd.queue.Len() > 0 && bwd.queue.Len() > 0 {
		if iterations%contextCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return unreachable
			default:
			}
		}
		iterations++

		// Expand whichever frontier currently has the smaller top distance.
		fwdTop := fwd.queue[0].dist
		bwdTop := bwd.queue[0].dist
		if fwdTop+bwdTop >= mu {
			break
		}

		if fwdTop <= bwdTop {
			cur := heap.Pop(&fwd.queue).(*pqItem)
			u := cur.node
			if cur.dist > fwd.dist[u]+Epsilon {
				continue
			}
			fwd.settled[u] = true
			if d, ok := bwd.dist[u]; ok {
				if cur.dist+d < mu {
					mu = cur.dist + d
					meet = u
					met = true
				}
			}
			fwd.relax(u, v.Out(u), w)
		} else {
			cur := heap.Pop(&bwd.queue).(*pqItem)
			u := cur.node
			if cur.dist > bwd.dist[u]+Epsilon {
				continue
			}
			bwd.settled[u] = true
			if d, ok := fwd.dist[u]; ok {
				if cur.dist+d < mu {
					mu = cur.dist + d
					meet = u
					met = true
				}
			}
			// bwd traverses reverse edges: In(u) yields edges whose To is a
			// predecessor of u in the original graph, which is exactly the
			// forward adjacency of u in the reversed graph.
			bwd.relax(u, v.In(u), w)
		}
	}

	if !met {
		return unreachable
	}

	// Reconstruct: s -> ... -> meet via fwd.parent, meet -> ... -> t via bwd.parent.
	var fwdPath []int64
	for n := meet; ; n = fwd.parent[n] {
		fwdPath = append(fwdPath, n)
		if n == s {
			break
		}
	}
	reverse(fwdPath)

	var bwdPath []int64
	for n := meet; n != t; {
		n = bwd.parent[n]
		bwdPath = append(bwdPath, n)
	}

	path := append(fwdPath, bwdPath...)
	return Result{Path: path, Cost: mu}
}

func reverse(s []int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// SingleSource runs a one-sided Dijkstra from src over weight w and returns
// the full distance map, used by the subgraph builder's path-bound pruning
// (§4.4 step 5) which needs distances to/from every node, not just one
// target.
func SingleSource(ctx context.Context, v View, src int64, w Weight) map[int64]float64 {
	dist := map[int64]float64{src: 0}
	q := pq{{node: src, dist: 0}}
	heap.Init(&q)

	iterations := 0
	for q.Len() > 0 {
		if iterations%contextCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return dist
			default:
			}
		}
		iterations++

		cur := heap.Pop(&q).(*pqItem)
		u := cur.node
		if cur.dist > dist[u]+Epsilon {
			continue
		}
		for _, e := range v.Out(u) {
			nd := dist[u] + w(e)
			if cur2, ok := dist[e.To]; !ok || nd < cur2-Epsilon {
				dist[e.To] = nd
				heap.Push(&q, &pqItem{node: e.To, dist: nd})
			}
		}
	}
	return dist
}

// SingleSourceReverse is SingleSource over the reverse adjacency, used to
// compute distance-to-destination maps.
func SingleSourceReverse(ctx context.Context, v View, dst int64, w Weight) map[int64]float64 {
	dist := map[int64]float64{dst: 0}
	q := pq{{node: dst, dist: 0}}
	heap.Init(&q)

	iterations := 0
	for q.Len() > 0 {
		if iterations%contextCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return dist
			default:
			}
		}
		iterations++

		cur := heap.Pop(&q).(*pqItem)
		u := cur.node
		if cur.dist > dist[u]+Epsilon {
			continue
		}
		for _, e := range v.In(u) {
			nd := dist[u] + w(e)
			if cur2, ok := dist[e.To]; !ok || nd < cur2-Epsilon {
				dist[e.To] = nd
				heap.Push(&q, &pqItem{node: e.To, dist: nd})
			}
		}
	}
	return dist
}

// Get returns m[id] or +Inf when absent, the convention used throughout the
// bound-checking code in §4.4/§4.7.
func Get(m map[int64]float64, id int64) float64 {
	if v, ok := m[id]; ok {
		return v
	}
	return Infinity
}
