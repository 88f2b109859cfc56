package mip

import (
	"context"
	"math"
	"time"

	"chalet/internal/feasibility"
	"chalet/internal/graph"
)

// node is a branch-and-bound frontier entry: the variable fixings inherited
// from its ancestors. Binary variables make an explicit fixed/free map
// simpler and cheaper to carry than general bound intervals.
type node struct {
	fixed map[int]int
	depth int
}

// Solve runs the branch-and-cut search to the given deadline or until the
// tree is exhausted, and returns the best assignment found (nil if none is
// feasible). ctx cancellation is checked between nodes.
func (e *Engine) Solve(ctx context.Context, deadline time.Time) *Assignment {
	stack := []node{{fixed: map[int]int{}}}
	productiveRoundMemory := map[int][]int{} // a coarse per-depth memory; B&B nodes don't carry stable ids

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return e.incumbent
		default:
		}
		if time.Now().After(deadline) {
			return e.incumbent
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e.nodesVisited++

		children := e.processNode(ctx, n, deadline, productiveRoundMemory)
		stack = append(stack, children...)
	}
	return e.incumbent
}

// processNode runs the relaxation-callback loop for one B&B node: solve the
// LP, separate, re-solve, until either the node is pruned, an integer
// solution is accepted, or no more cuts are found and branching is needed.
// Returns the child nodes to push (empty if the node terminated).
func (e *Engine) processNode(ctx context.Context, n node, deadline time.Time, memory map[int][]int) []node {
	isRoot := len(n.fixed) == 0
	maxRounds := OtherFracSepRounds
	if isRoot {
		maxRounds = RootFracSepRounds
	}
	lastProductive := memory[n.depth]
	productiveRounds := 0

	for round := 0; round < maxRounds; round++ {
		if time.Now().After(deadline) {
			return nil
		}

		prob, colToVar, constOffset := e.buildLP(n.fixed)
		sol := Solve(prob)
		if !sol.Feasible {
			return nil // infeasible node, prune
		}
		objValue := sol.Objective + constOffset
		bound := e.bound(objValue)
		if !e.improves(bound) {
			return nil // bound prune
		}

		full := e.fullAssignment(n.fixed, colToVar, sol.X)

		if e.allNearInteger(full) {
			cutsAdded, productive := e.integerSeparationPass(ctx, full)
			if cutsAdded {
				productiveRounds++
				memory[n.depth] = productive
				if productiveRounds%PrimalHeuristicPeriod == 0 {
					e.runPrimalHeuristic(ctx, full)
				}
				continue
			}
			e.acceptIntegerSolution(ctx, full)
			return nil
		}

		cutsAdded, productive := e.fractionalSeparationPass(full, lastProductive)
		if cutsAdded {
			lastProductive = productive
			productiveRounds++
			memory[n.depth] = productive
			if productiveRounds%PrimalHeuristicPeriod == 0 {
				e.runPrimalHeuristic(ctx, full)
			}
			continue
		}

		return e.branch(n, full)
	}

	// Round cap hit with a still-fractional relaxation: branch on the last
	// LP solved, recomputed once more so the fixings reflect this node.
	prob, colToVar, _ := e.buildLP(n.fixed)
	sol := Solve(prob)
	if !sol.Feasible {
		return nil
	}
	full := e.fullAssignment(n.fixed, colToVar, sol.X)
	if e.allNearInteger(full) {
		e.acceptIntegerSolution(ctx, full)
		return nil
	}
	return e.branch(n, full)
}

func (e *Engine) bound(objValue float64) float64 {
	if e.Mode == MinCost {
		return objValue
	}
	return -objValue
}

func (e *Engine) improves(bound float64) bool {
	if e.incumbent == nil {
		return true
	}
	if e.Mode == MinCost {
		return bound < e.incumbentObj-1e-9
	}
	return bound > e.incumbentObj+1e-9
}

func (e *Engine) fullAssignment(fixed map[int]int, colToVar []int, x []float64) []float64 {
	full := make([]float64, e.numVars())
	for v, val := range fixed {
		full[v] = float64(val)
	}
	for col, v := range colToVar {
		full[v] = x[col]
	}
	return full
}

func (e *Engine) allNearInteger(full []float64) bool {
	for _, v := range full {
		if math.Abs(v-math.Round(v)) > EpsInt {
			return false
		}
	}
	return true
}

// branch picks the most fractional unfixed variable and pushes both
// children (fix-to-1 explored first via LIFO order, since building a
// station tends to tighten coverage fastest in min-cost mode).
func (e *Engine) branch(n node, full []float64) []node {
	bestVar := -1
	bestDist := -1.0
	for v := 0; v < e.numVars(); v++ {
		if _, isFixed := n.fixed[v]; isFixed {
			continue
		}
		f := full[v]
		dist := math.Min(f, 1-f)
		if dist > bestDist+1e-12 {
			bestDist = dist
			bestVar = v
		}
	}
	if bestVar == -1 {
		return nil
	}

	child0 := cloneFixed(n.fixed)
	child0[bestVar] = 0
	child1 := cloneFixed(n.fixed)
	child1[bestVar] = 1

	return []node{
		{fixed: child0, depth: n.depth + 1},
		{fixed: child1, depth: n.depth + 1},
	}
}

func cloneFixed(fixed map[int]int) map[int]int {
	out := make(map[int]int, len(fixed)+1)
	for k, v := range fixed {
		out[k] = v
	}
	return out
}

// selectionFrom extracts the built-station set implied by full's x block.
func (e *Engine) selectionFrom(full []float64) map[int64]bool {
	sel := make(map[int64]bool)
	for v := 0; v < e.numX; v++ {
		if full[v] >= 1-EpsInt {
			sel[e.candidates[v]] = true
		}
	}
	return sel
}

// acceptIntegerSolution is the pre-/post-integer-solution callback pair of
// §4.7(b)-(c): verify per-pair time-feasibility, drop infeasible coverage
// claims, repair max-demand maximality, then submit if it improves.
func (e *Engine) acceptIntegerSolution(ctx context.Context, full []float64) {
	sel := e.selectionFrom(full)

	if e.Mode == MinCost {
		for _, ps := range e.pairs {
			ok, _ := feasibility.Covered(ctx, ps.sub, e.Nodes, sel, ps.pair.MaxRoadTime, ps.pair.MaxTime)
			if !ok {
				return // pre-integer-solution callback: reject
			}
		}
		cost := 0.0
		for u := range sel {
			cost += e.Nodes[u].Cost
		}
		if e.improves(cost) {
			covered := make(map[int]bool, len(e.pairs))
			for _, ps := range e.pairs {
				covered[ps.index] = true
			}
			e.incumbent = &Assignment{Selected: sel, Covered: covered}
			e.incumbentObj = cost
		}
		return
	}

	// A single feasibility check per pair serves both the pre-integer-solution
	// callback (zero a claimed y whose path turned out infeasible) and the
	// post-integer-solution maximality repair (promote any y=0 pair whose
	// path is in fact feasible): either way, covered[pair] == path exists.
	covered := make(map[int]bool, len(e.pairs))
	demand := 0.0
	for _, ps := range e.pairs {
		ok, _ := feasibility.Covered(ctx, ps.sub, e.Nodes, sel, ps.pair.MaxRoadTime, ps.pair.MaxTime)
		if ok {
			covered[ps.index] = true
			demand += ps.pair.Demand
		}
	}
	if !e.improves(demand) {
		return
	}
	e.incumbent = &Assignment{Selected: sel, Covered: covered}
	e.incumbentObj = demand
}

// pathWeightSum sums weight f along a materialized node path in g.
func pathWeightSum(v graph.View, path []int64, f func(graph.Edge) float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		u, next := path[i], path[i+1]
		for _, e := range v.Out(u) {
			if e.To == next {
				total += f(e)
				break
			}
		}
	}
	return total
}
