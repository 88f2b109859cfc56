package mip

import (
	"context"
	"testing"
	"time"

	"chalet/internal/config"
	"chalet/internal/model"
	"chalet/internal/preprocess"
	"chalet/internal/subgraph"
)

func buildScenario(t *testing.T, nodes []model.Node, arcs []model.Arc, pairSpecs []model.ODPair) (map[int64]model.Node, []model.ODPair, []*subgraph.Subgraph) {
	t.Helper()
	p := preprocess.FromConfig(config.Defaults().Parameters)
	pre, _, err := preprocess.Run(nodes, arcs, nil, p)
	if err != nil {
		t.Fatal(err)
	}

	pairs := make([]model.ODPair, len(pairSpecs))
	subs := make([]*subgraph.Subgraph, len(pairSpecs))
	for i, spec := range pairSpecs {
		spec.Feasible = true
		pairs[i] = spec
		subs[i] = subgraph.Build(context.Background(), spec, pre, p)
	}
	return pre.Nodes, pairs, subs
}

// TestMinCostRequiresTheOnlyStation models a single pair that can only be
// covered through one candidate station: the solver must build it.
func TestMinCostRequiresTheOnlyStation(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeSite},
		{ID: 10, Type: model.NodeTypeStation, Cost: 5},
	}
	arcs := []model.Arc{
		{Tail: 1, Head: 10, RoadTime: 50, Distance: 50},
		{Tail: 10, Head: 2, RoadTime: 50, Distance: 50},
	}
	pairSpec := model.ODPair{OriginID: 1, DestinationID: 2, Demand: 1, MaxRoadTime: 1000, MaxTime: 1000}
	nodeMap, pairs, subs := buildScenario(t, nodes, arcs, []model.ODPair{pairSpec})

	if subs[0].Empty() {
		t.Fatal("expected a non-empty subgraph")
	}

	result := Run(context.Background(), nodeMap, pairs, subs, config.Defaults().Parameters.CostBudget, 5*time.Second)
	if result == nil {
		t.Fatal("expected a feasible assignment")
	}
	if !result.Selected[10] {
		t.Fatalf("expected station 10 to be built, got %+v", result.Selected)
	}
}

// TestMaxDemandRespectsBudget models two independent pairs, each needing its
// own station, with a budget covering only one: the higher-demand pair should
// win.
func TestMaxDemandRespectsBudget(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeSite},
		{ID: 3, Type: model.NodeTypeSite},
		{ID: 4, Type: model.NodeTypeSite},
		{ID: 10, Type: model.NodeTypeStation, Cost: 5},
		{ID: 20, Type: model.NodeTypeStation, Cost: 5},
	}
	arcs := []model.Arc{
		{Tail: 1, Head: 10, RoadTime: 50, Distance: 50},
		{Tail: 10, Head: 2, RoadTime: 50, Distance: 50},
		{Tail: 3, Head: 20, RoadTime: 50, Distance: 50},
		{Tail: 20, Head: 4, RoadTime: 50, Distance: 50},
	}
	pairSpecs := []model.ODPair{
		{OriginID: 1, DestinationID: 2, Demand: 10, MaxRoadTime: 1000, MaxTime: 1000},
		{OriginID: 3, DestinationID: 4, Demand: 3, MaxRoadTime: 1000, MaxTime: 1000},
	}
	nodeMap, pairs, subs := buildScenario(t, nodes, arcs, pairSpecs)

	result := Run(context.Background(), nodeMap, pairs, subs, 5, 5*time.Second)
	if result == nil {
		t.Fatal("expected a feasible assignment")
	}
	if !result.Covered[0] || result.Covered[1] {
		t.Fatalf("expected only the higher-demand pair covered under a one-station budget, got %+v", result.Covered)
	}
}
