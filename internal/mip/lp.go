package mip

import (
	"context"
	"math"

	"chalet/internal/graph"
)

// buildLP projects the full variable universe down to the currently unfixed
// columns: fixed variables are folded into the objective constant and into
// each constraint's right-hand side rather than kept as degenerate rows,
// which keeps the tableau small at deep branch-and-bound nodes.
func (e *Engine) buildLP(fixed map[int]int) (Problem, []int, float64) {
	n := e.numVars()
	varToCol := make([]int, n)
	colToVar := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if _, isFixed := fixed[v]; isFixed {
			varToCol[v] = -1
			continue
		}
		varToCol[v] = len(colToVar)
		colToVar = append(colToVar, v)
	}

	obj := make([]float64, len(colToVar))
	constOffset := 0.0

	if e.Mode == MinCost {
		for col, v := range colToVar {
			obj[col] = e.Nodes[e.candidates[v]].Cost
		}
		for v, val := range fixed {
			if val == 1 {
				constOffset += e.Nodes[e.candidates[v]].Cost
			}
		}
	} else {
		for col, v := range colToVar {
			if v >= e.numX {
				obj[col] = -e.pairs[e.pairPosForYCol(v)].pair.Demand
			}
		}
		for v, val := range fixed {
			if v >= e.numX && val == 1 {
				constOffset += -e.pairs[e.pairPosForYCol(v)].pair.Demand
			}
		}
	}

	var constraints []Constraint
	for _, col := range colToVar {
		constraints = append(constraints, Constraint{Coeffs: map[int]float64{col: 1}, Type: LE, RHS: 1})
	}

	if e.Mode == MaxDemand {
		coeffs := map[int]float64{}
		rhs := e.CostBudget
		for v := 0; v < e.numX; v++ {
			cost := e.Nodes[e.candidates[v]].Cost
			if cost == 0 {
				continue
			}
			if val, isFixed := fixed[v]; isFixed {
				rhs -= cost * float64(val)
			} else {
				coeffs[varToCol[v]] = cost
			}
		}
		if !math.IsInf(rhs, 1) {
			constraints = append(constraints, Constraint{Coeffs: coeffs, Type: LE, RHS: rhs})
		}
	}

	for _, c := range e.cuts {
		coeffs := map[int]float64{}
		rhs := 0.0
		if e.Mode == MinCost {
			rhs = 1
		}
		for _, cand := range c.vars {
			v := e.xCol[cand]
			if val, isFixed := fixed[v]; isFixed {
				rhs -= float64(val)
			} else {
				coeffs[varToCol[v]] = 1
			}
		}
		if e.Mode == MaxDemand {
			yv := e.pairs[c.pairPos].yCol
			if val, isFixed := fixed[yv]; isFixed {
				rhs += float64(val)
			} else {
				coeffs[varToCol[yv]] = -1
			}
		}
		constraints = append(constraints, Constraint{Coeffs: coeffs, Type: GE, RHS: rhs})
	}

	return Problem{NumVars: len(colToVar), Obj: obj, Constraints: constraints}, colToVar, constOffset
}

// activeFor returns the "active" predicate of §4.7(a): a node is active if
// it is not a gated candidate auxiliary, or if it is and the owning
// candidate's LP value is within EpsInt of 1.
func (e *Engine) activeFor(full []float64) func(int64) bool {
	return func(id int64) bool {
		if id >= 0 {
			return true
		}
		base := -id
		col, ok := e.xCol[base]
		if !ok {
			return true
		}
		return full[col] >= 1-EpsInt
	}
}

// integerSeparationPass runs §4.7(a)'s integer-separation branch across
// every pair and returns whether any cut was added plus which pair
// positions were productive.
func (e *Engine) integerSeparationPass(ctx context.Context, full []float64) (bool, []int) {
	active := e.activeFor(full)
	anyCut := false
	var productive []int

	for pos, ps := range e.pairs {
		view := graph.View{G: ps.sub.G, Usable: active}
		res := graph.ShortestPath(ctx, view, ps.sub.Origin, ps.sub.Destination, graph.FullTimeWeight)

		var cuts [][]int64
		if res.Path == nil {
			cuts = integerSeparate(ps.sub.G, ps.sub.Origin, ps.sub.Destination, active)
		} else {
			roadTime := pathWeightSum(view, res.Path, graph.RoadTimeWeight)
			if res.Cost > ps.pair.MaxTime+graph.Epsilon || roadTime > ps.pair.MaxRoadTime+graph.Epsilon {
				cuts = timeSeparate(ps.sub.G, ps.sub.Origin, ps.sub.Destination, active, ps.pair.MaxRoadTime, ps.pair.MaxTime)
			}
		}

		pairProductive := false
		for _, vars := range cuts {
			if e.addCut(pos, vars) {
				anyCut = true
				pairProductive = true
			}
		}
		if pairProductive {
			productive = append(productive, pos)
		}
	}
	return anyCut, productive
}

// fractionalSeparationPass runs §4.7(a)'s min-cut-based fractional
// separation over a throttled subset of pairs: the previous round's
// productive pairs plus a 50%-random sample of the rest, falling back to a
// full pass if that subset yields nothing.
func (e *Engine) fractionalSeparationPass(full []float64, lastProductive []int) (bool, []int) {
	xVal := func(id int64) float64 { return full[e.xCol[id]] }

	probe := e.throttledSubset(lastProductive)
	cut, productive := e.runFractionalOver(probe, full, xVal)
	if cut || len(probe) >= len(e.pairs) {
		return cut, productive
	}
	return e.runFractionalOver(allPositions(len(e.pairs)), full, xVal)
}

func (e *Engine) runFractionalOver(positions []int, full []float64, xVal func(int64) float64) (bool, []int) {
	anyCut := false
	var productive []int
	for _, pos := range positions {
		ps := e.pairs[pos]
		vars, value, ok := fractionalSeparate(ps.sub.G, ps.sub.Candidates, xVal, ps.sub.Origin, ps.sub.Destination)
		if !ok {
			continue
		}
		threshold := 1.0
		if e.Mode == MaxDemand {
			threshold = full[ps.yCol]
		}
		if value >= threshold-graph.Epsilon {
			continue
		}
		if e.addCut(pos, vars) {
			anyCut = true
			productive = append(productive, pos)
		}
	}
	return anyCut, productive
}

func (e *Engine) throttledSubset(lastProductive []int) []int {
	seed := int64(len(e.cuts))*1_000_003 + int64(e.nodesVisited)
	e.rng = e.rng.reseed(seed)

	marked := make(map[int]bool, len(lastProductive))
	out := append([]int(nil), lastProductive...)
	for _, p := range lastProductive {
		marked[p] = true
	}
	for pos := range e.pairs {
		if marked[pos] {
			continue
		}
		if e.rng.float64() < 0.5 {
			out = append(out, pos)
		}
	}
	return out
}

func allPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
