package mip

import (
	"context"
	"math"
	"sort"

	"chalet/internal/csp"
	"chalet/internal/feasibility"
	"chalet/internal/graph"
	"chalet/internal/model"
	"chalet/internal/redundancy"
)

// runPrimalHeuristic implements §4.8: per pair, ordered by covered demand
// descending in max-demand mode, find the cheapest time-feasible path under
// a reduced-cost projection of the current LP point, accumulate marginal
// station costs skipping stations this pass already chose, and submit the
// resulting integer solution if it beats the incumbent.
func (e *Engine) runPrimalHeuristic(ctx context.Context, full []float64) {
	reduced := make(map[int64]float64, e.numX)
	for v := 0; v < e.numX; v++ {
		id := e.candidates[v]
		cost := e.Nodes[id].Cost
		reduced[id] = cost * math.Max(0, 1-full[v])
	}

	order := make([]int, len(e.pairs))
	for i := range order {
		order[i] = i
	}
	if e.Mode == MaxDemand {
		sort.Slice(order, func(i, j int) bool {
			return e.pairs[order[i]].pair.Demand > e.pairs[order[j]].pair.Demand
		})
	}

	chosen := make(map[int64]bool)
	cumulativeCost := 0.0
	coveredDemand := 0.0
	ySel := make(map[int]bool, len(e.pairs))

	for _, pos := range order {
		ps := e.pairs[pos]
		// Temporary per-call cost projection; never mutates the shared
		// subgraph, restored automatically by going out of scope.
		nodeCost := func(id int64) float64 {
			if model.IsAuxiliary(id) || chosen[id] {
				return 0
			}
			return reduced[id]
		}

		view := graph.NewView(ps.sub.G)
		res := csp.TimeFeasibleCheapestPath(ctx, view, ps.sub.Origin, ps.sub.Destination, ps.pair.MaxRoadTime, ps.pair.MaxTime, nodeCost)
		if res.Path == nil {
			continue
		}

		marginal := 0.0
		var newlyChosen []int64
		for _, id := range res.Path {
			if model.IsAuxiliary(id) || chosen[id] {
				continue
			}
			if _, isCandidate := e.xCol[id]; !isCandidate {
				continue
			}
			marginal += e.Nodes[id].Cost
			newlyChosen = append(newlyChosen, id)
		}

		if e.Mode == MaxDemand {
			if cumulativeCost+marginal > e.CostBudget+graph.Epsilon {
				continue
			}
		}
		cumulativeCost += marginal
		for _, id := range newlyChosen {
			chosen[id] = true
		}
		ySel[pos] = true
		coveredDemand += ps.pair.Demand
	}

	if e.Mode == MinCost {
		e.submitMinCostHeuristic(ctx, chosen)
		return
	}
	e.submitMaxDemandHeuristic(chosen, ySel, coveredDemand)
}

func (e *Engine) submitMinCostHeuristic(ctx context.Context, chosen map[int64]bool) {
	for _, ps := range e.pairs {
		ok, _ := feasibility.Covered(ctx, ps.sub, e.Nodes, chosen, ps.pair.MaxRoadTime, ps.pair.MaxTime)
		if !ok {
			return
		}
	}

	reducedSel := redundancy.Reduce(ctx, stationIDs(chosen), e.pairContexts(), e.Nodes)
	sel := make(map[int64]bool, len(reducedSel))
	cost := 0.0
	for _, u := range reducedSel {
		sel[u] = true
		cost += e.Nodes[u].Cost
	}
	if !e.improves(cost) {
		return
	}
	covered := make(map[int]bool, len(e.pairs))
	for _, ps := range e.pairs {
		covered[ps.index] = true
	}
	e.incumbent = &Assignment{Selected: sel, Covered: covered}
	e.incumbentObj = cost
}

func (e *Engine) submitMaxDemandHeuristic(chosen map[int64]bool, ySel map[int]bool, coveredDemand float64) {
	if !e.improves(coveredDemand) {
		return
	}
	covered := make(map[int]bool, len(ySel))
	for pos, ok := range ySel {
		if ok {
			covered[e.pairs[pos].index] = true
		}
	}
	e.incumbent = &Assignment{Selected: chosen, Covered: covered}
	e.incumbentObj = coveredDemand
}

func (e *Engine) pairContexts() []redundancy.PairContext {
	out := make([]redundancy.PairContext, len(e.pairs))
	for i, ps := range e.pairs {
		out[i] = redundancy.PairContext{Sub: ps.sub, MaxRoadTime: ps.pair.MaxRoadTime, MaxTime: ps.pair.MaxTime}
	}
	return out
}

func stationIDs(sel map[int64]bool) []int64 {
	out := make([]int64, 0, len(sel))
	for u := range sel {
		out = append(out, u)
	}
	return out
}
