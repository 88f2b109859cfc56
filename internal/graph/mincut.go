package graph

// =============================================================================
// Min s-t cut via Dinic's algorithm
// =============================================================================
//
// Used by C7's fractional separation: arc capacity c(u,-u) = x̃_u (the LP
// relaxation value of station u), all other arcs effectively infinite. If
// the resulting min cut value is below the required threshold, the
// corresponding inequality is a violated cut.
//
// Time Complexity: O(V^2 * E)
// Space Complexity: O(V + E)
// =============================================================================

type flowEdge struct {
	to     int64
	cap    float64
	flow   float64
	revIdx int
}

// FlowNetwork is a small adjacency-list max-flow network built fresh for
// each min-cut query; it is cheap to construct relative to one B&B node's
// total separation work.
type FlowNetwork struct {
	adj map[int64][]*flowEdge
}

// NewFlowNetwork returns an empty network.
func NewFlowNetwork() *FlowNetwork {
	return &FlowNetwork{adj: make(map[int64][]*flowEdge)}
}

// AddEdge adds a directed edge with the given capacity and its zero-capacity
// reverse twin.
func (n *FlowNetwork) AddEdge(from, to int64, cap float64) {
	fe := &flowEdge{to: to, cap: cap}
	re := &flowEdge{to: from, cap: 0}
	n.adj[from] = append(n.adj[from], fe)
	n.adj[to] = append(n.adj[to], re)
	fe.revIdx = len(n.adj[to]) - 1
	re.revIdx = len(n.adj[from]) - 1
}

// MinCut computes the min s-t cut value and the set of nodes reachable from
// s in the residual graph after max flow is saturated (the source side of
// the cut) via Dinic's algorithm.
func (n *FlowNetwork) MinCut(s, t int64) (value float64, sourceSide map[int64]bool) {
	maxFlow := n.dinic(s, t)
	return maxFlow, n.residualReachable(s)
}

func (n *FlowNetwork) dinic(s, t int64) float64 {
	total := 0.0
	for {
		level := n.bfsLevels(s, t)
		if level == nil {
			break
		}
		it := make(map[int64]int)
		for {
			pushed := n.dfsBlocking(s, t, Infinity, level, it)
			if pushed <= Epsilon {
				break
			}
			total += pushed
		}
	}
	return total
}

func (n *FlowNetwork) bfsLevels(s, t int64) map[int64]int {
	level := map[int64]int{s: 0}
	queue := []int64{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range n.adj[u] {
			if e.cap-e.flow > Epsilon {
				if _, ok := level[e.to]; !ok {
					level[e.to] = level[u] + 1
					queue = append(queue, e.to)
				}
			}
		}
	}
	if _, ok := level[t]; !ok {
		return nil
	}
	return level
}

func (n *FlowNetwork) dfsBlocking(u, t int64, f float64, level map[int64]int, it map[int64]int) float64 {
	if u == t {
		return f
	}
	edges := n.adj[u]
	for ; it[u] < len(edges); it[u]++ {
		e := edges[it[u]]
		if e.cap-e.flow <= Epsilon {
			continue
		}
		if lvl, ok := level[e.to]; !ok || lvl != level[u]+1 {
			continue
		}
		d := f
		if e.cap-e.flow < d {
			d = e.cap - e.flow
		}
		pushed := n.dfsBlocking(e.to, t, d, level, it)
		if pushed > Epsilon {
			e.flow += pushed
			n.adj[e.to][e.revIdx].flow -= pushed
			return pushed
		}
	}
	return 0
}

func (n *FlowNetwork) residualReachable(s int64) map[int64]bool {
	visited := map[int64]bool{s: true}
	stack := []int64{s}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range n.adj[u] {
			if e.cap-e.flow > Epsilon && !visited[e.to] {
				visited[e.to] = true
				stack = append(stack, e.to)
			}
		}
	}
	return visited
}
