// Package csp implements the constrained shortest path engine: LARAC
// (Lagrangian-relaxation-based aggregated cost), a heuristic for the
// bi-bounded shortest path problem, plus the two feasibility oracles built
// on top of it (§4.3).
package csp

import (
	"context"
	"math"

	"chalet/internal/graph"
)

// MaxIterations caps LARAC's lambda-search loop; the original tolerates
// unbounded iteration on pathological cost magnitudes, this implementation
// caps it per the Design Notes' own stated resolution.
const MaxIterations = 128

// Tolerance is LARAC's stopping epsilon for c(P) ≈ c(P_len).
const Tolerance = 1e-8

// Larac solves the weight-bounded, length-minimizing shortest path problem:
// minimize ell(path) subject to w(path) <= bound, from s to t. Returns an
// unreachable result if no path exists at all, or if even the min-w path
// exceeds bound (infeasible under this reduction).
func Larac(ctx context.Context, v graph.View, s, t int64, length, weight graph.Weight, bound float64) graph.Result {
	pLen := graph.ShortestPath(ctx, v, s, t, length)
	if pLen.Path == nil {
		return pLen
	}
	wLen := pathWeight(v, pLen.Path, weight)
	if wLen <= bound+graph.Epsilon {
		return pLen
	}

	pWeight := graph.ShortestPath(ctx, v, s, t, weight)
	if pWeight.Path == nil {
		return pWeight
	}
	wWeight := pathWeight(v, pWeight.Path, weight)
	if wWeight > bound+graph.Epsilon {
		// Infeasible: even the min-weight path violates the bound.
		return graph.Result{Path: nil, Cost: graph.Infinity}
	}

	lenLen := pathWeight(v, pLen.Path, length)
	lenWeight := pathWeight(v, pWeight.Path, length)

	for i := 0; i < MaxIterations; i++ {
		denom := wLen - wWeight
		if math.Abs(denom) < graph.Epsilon {
			break
		}
		lambda := (lenWeight - lenLen) / denom
		if lambda < 0 {
			lambda = 0
		}

		combined := func(e graph.Edge) float64 { return length(e) + lambda*weight(e) }
		pc := graph.ShortestPath(ctx, v, s, t, combined)
		if pc.Path == nil {
			return pWeight
		}

		cLen := pathWeightFn(v, pLen.Path, combined)
		cP := pathWeightFn(v, pc.Path, combined)
		if math.Abs(cP-cLen) < Tolerance {
			// Converged: P_w is the best feasible aggregated-cost path found.
			return pWeight
		}

		wP := pathWeight(v, pc.Path, weight)
		lenP := pathWeight(v, pc.Path, length)
		if wP <= bound+graph.Epsilon {
			pWeight = pc
			wWeight = wP
			lenWeight = lenP
		} else {
			pLen = pc
			wLen = wP
			lenLen = lenP
		}
	}

	return pWeight
}

func pathWeight(v graph.View, path []int64, w graph.Weight) float64 {
	return pathWeightFn(v, path, w)
}

func pathWeightFn(v graph.View, path []int64, f func(graph.Edge) float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		u, next := path[i], path[i+1]
		for _, e := range v.G.Out(u) {
			if e.To == next {
				total += f(e)
				break
			}
		}
	}
	return total
}

// TimeFeasiblePath returns any path from s to t with road_time <= roadBound
// and total_time <= timeBound, or an unreachable result if none exists.
// Implements the primary-then-dual LARAC retry described in §4.3.
func TimeFeasiblePath(ctx context.Context, v graph.View, s, t int64, roadBound, timeBound float64) graph.Result {
	primary := Larac(ctx, v, s, t, graph.FullTimeWeight, graph.RoadTimeWeight, roadBound)
	if primary.Path != nil {
		if totalTime := pathWeight(v, primary.Path, graph.FullTimeWeight); totalTime <= timeBound+graph.Epsilon {
			return primary
		}
	}

	dual := Larac(ctx, v, s, t, graph.RoadTimeWeight, graph.FullTimeWeight, timeBound)
	if dual.Path != nil {
		if roadTime := pathWeight(v, dual.Path, graph.RoadTimeWeight); roadTime <= roadBound+graph.Epsilon {
			return dual
		}
	}

	return graph.Result{Path: nil, Cost: graph.Infinity}
}

// TimeFeasibleCheapestPath minimizes sum of node costs along the path
// (head-node cost accumulation) subject to both time bounds. It runs LARAC
// with length = node cost and weight = road_time under roadBound, then checks
// the resulting path's total_time against timeBound. If that check fails it
// returns TimeFeasiblePath's result instead, which respects both bounds but
// is not necessarily cost-minimal.
func TimeFeasibleCheapestPath(ctx context.Context, v graph.View, s, t int64, roadBound, timeBound float64, nodeCost func(id int64) float64) graph.Result {
	length := func(e graph.Edge) float64 { return nodeCost(e.To) }
	candidate := Larac(ctx, v, s, t, length, graph.RoadTimeWeight, roadBound)
	if candidate.Path == nil {
		return candidate
	}
	if totalTime := pathWeight(v, candidate.Path, graph.FullTimeWeight); totalTime <= timeBound+graph.Epsilon {
		return candidate
	}
	// The cheapest-by-cost path over-runs the total-time bound; fall back to
	// any time-feasible path so callers always get a usable result when one
	// exists, even though it may not be cost-minimal in this rare case.
	return TimeFeasiblePath(ctx, v, s, t, roadBound, timeBound)
}
