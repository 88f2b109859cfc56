// Package mip implements the branch-and-cut orchestrator of §4.7: binary
// station-selection (and, in max-demand mode, pair-coverage) variables, a
// lazily-grown family of pair-coverage cuts separated against the LP
// relaxation, and the primal heuristic of §4.8.
package mip

import (
	"sort"

	"chalet/internal/model"
	"chalet/internal/subgraph"
)

// Mode selects the orchestrator's objective.
type Mode int

const (
	MinCost Mode = iota
	MaxDemand
)

// EpsInt is the near-integer tolerance used to decide, at a relaxation
// node, whether to run integer or fractional separation.
const EpsInt = 1e-6

// RootFracSepRounds and other = the work-throttling constants of §4.7.
const (
	RootFracSepRounds     = 30
	OtherFracSepRounds    = 1
	PrimalHeuristicPeriod = 29
)

// pairState is one required OD pair's solver-visible state.
type pairState struct {
	index int
	pair  model.ODPair
	sub   *subgraph.Subgraph
	yCol  int // variable column for y_k; -1 in min-cost mode
}

// cut is one separated inequality: sum_{u in Vars} x_u >= RHS (min-cost) or
// sum_{u in Vars} x_u - y_{pairPos} >= 0 (max-demand). Vars holds original
// candidate node ids, not column indices, so a cut survives variable
// re-indexing across nodes. pairPos indexes Engine.pairs, not the caller's
// original OD pair slice (those can differ once infeasible/empty pairs are
// dropped from the variable universe).
type cut struct {
	pairPos int
	vars    []int64
}

// Engine holds the shared branch-and-cut state for one solve: the variable
// universe, the running cut pool, and the incumbent. It is passed by
// reference through the stack-driven search loop in the manner of the pack's own
// branch-and-bound engines rather than via package-level mutable state.
type Engine struct {
	Nodes      map[int64]model.Node
	Mode       Mode
	CostBudget float64

	pairs      []*pairState
	candidates []int64       // sorted union of every pair's candidate stations
	xCol       map[int64]int // candidate id -> column index
	numX       int
	numY       int

	yColToPairPos []int // y column (relative, 0-based within the y block) -> position in pairs

	cuts []cut

	incumbent    *Assignment
	incumbentObj float64 // true objective value (cost for min-cost, demand for max-demand)
	nodesVisited int
	rng          randSource
}

// Assignment is a complete binary solution: which stations are built and,
// in max-demand mode, which pairs are covered. Covered and Selected are
// keyed the same way the caller's original pair/candidate ids were given.
type Assignment struct {
	Selected map[int64]bool
	Covered  map[int]bool // original OD-pair index -> covered; min-cost mode marks every pair
}

// NewEngine builds the variable universe from the per-pair subgraphs and
// seeds the initial cut pool (§4.7 "Initial cut seeding").
func NewEngine(nodes map[int64]model.Node, pairs []model.ODPair, subs []*subgraph.Subgraph, mode Mode, costBudget float64) *Engine {
	e := &Engine{
		Nodes:      nodes,
		Mode:       mode,
		CostBudget: costBudget,
		xCol:       make(map[int64]int),
		rng:        newRandSource(1),
	}

	candidateSet := make(map[int64]bool)
	for i, sub := range subs {
		if sub.Empty() || !pairs[i].Feasible {
			continue
		}
		for _, c := range sub.Candidates {
			candidateSet[c] = true
		}
	}
	e.candidates = make([]int64, 0, len(candidateSet))
	for c := range candidateSet {
		e.candidates = append(e.candidates, c)
	}
	sort.Slice(e.candidates, func(i, j int) bool { return e.candidates[i] < e.candidates[j] })
	for i, c := range e.candidates {
		e.xCol[c] = i
	}
	e.numX = len(e.candidates)

	for i, sub := range subs {
		if sub.Empty() || !pairs[i].Feasible {
			continue
		}
		ps := &pairState{index: i, pair: pairs[i], sub: sub, yCol: -1}
		if mode == MaxDemand {
			ps.yCol = e.numX + e.numY
			e.yColToPairPos = append(e.yColToPairPos, len(e.pairs))
			e.numY++
		}
		e.pairs = append(e.pairs, ps)
	}

	for pos, ps := range e.pairs {
		fwd := seedCutsDirectional(ps.sub.G, ps.sub.Origin, ps.sub.Destination, candidateSet, true)
		bwd := seedCutsDirectional(ps.sub.G, ps.sub.Origin, ps.sub.Destination, candidateSet, false)
		for _, vars := range append(fwd, bwd...) {
			e.addCut(pos, vars)
		}
	}

	return e
}

// addCut registers a new pair-coverage cut, deduplicating identical
// (pairPos, vars) entries so the LP does not accumulate redundant rows.
func (e *Engine) addCut(pairPos int, vars []int64) bool {
	if len(vars) == 0 {
		return false
	}
	sorted := append([]int64(nil), vars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, c := range e.cuts {
		if c.pairPos != pairPos || len(c.vars) != len(sorted) {
			continue
		}
		same := true
		for i := range sorted {
			if c.vars[i] != sorted[i] {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	e.cuts = append(e.cuts, cut{pairPos: pairPos, vars: sorted})
	return true
}

// numVars is the total LP column count (candidates plus, in max-demand
// mode, one y per pair).
func (e *Engine) numVars() int {
	return e.numX + e.numY
}

// pairPosForYCol returns the pairs index owning y column v (v is the
// absolute column, numX <= v < numX+numY).
func (e *Engine) pairPosForYCol(v int) int {
	return e.yColToPairPos[v-e.numX]
}
