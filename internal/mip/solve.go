package mip

import (
	"context"
	"math"
	"time"

	"chalet/internal/model"
	"chalet/internal/subgraph"
)

// Run builds the variable universe from pairs/subs and solves it to
// maxRunTime or tree exhaustion, returning nil if no feasible solution was
// found within the budget (an empty Assignment is itself a valid answer
// when no pair requires a station).
func Run(ctx context.Context, nodes map[int64]model.Node, pairs []model.ODPair, subs []*subgraph.Subgraph, costBudget float64, maxRunTime time.Duration) *Assignment {
	mode := MinCost
	if !math.IsInf(costBudget, 1) {
		mode = MaxDemand
	}
	e := NewEngine(nodes, pairs, subs, mode, costBudget)
	if len(e.pairs) == 0 {
		return &Assignment{Selected: map[int64]bool{}, Covered: map[int]bool{}}
	}
	deadline := time.Now().Add(maxRunTime)
	return e.Solve(ctx, deadline)
}
