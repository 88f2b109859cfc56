package redundancy

import (
	"context"
	"testing"

	"chalet/internal/config"
	"chalet/internal/model"
	"chalet/internal/preprocess"
	"chalet/internal/subgraph"
)

// TestReduceDropsRedundantStation models §8 scenario 6 with S={A,B,C}, three
// parallel stations each of which alone covers the pair: Reduce drops A, then
// B, and keeps only C.
func TestReduceDropsRedundantStation(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeSite},
		{ID: 10, Type: model.NodeTypeStation, Cost: 1}, // A
		{ID: 11, Type: model.NodeTypeStation, Cost: 1}, // B
		{ID: 12, Type: model.NodeTypeStation, Cost: 1}, // C
	}
	arcs := []model.Arc{
		{Tail: 1, Head: 10, RoadTime: 50, Distance: 50},
		{Tail: 10, Head: 2, RoadTime: 50, Distance: 50},
		{Tail: 1, Head: 11, RoadTime: 50, Distance: 50},
		{Tail: 11, Head: 2, RoadTime: 50, Distance: 50},
		{Tail: 1, Head: 12, RoadTime: 50, Distance: 50},
		{Tail: 12, Head: 2, RoadTime: 50, Distance: 50},
	}
	p := preprocess.FromConfig(config.Defaults().Parameters)
	pre, _, err := preprocess.Run(nodes, arcs, nil, p)
	if err != nil {
		t.Fatal(err)
	}

	pair := model.ODPair{OriginID: 1, DestinationID: 2, MaxRoadTime: 1000, MaxTime: 1000}
	sub := subgraph.Build(context.Background(), pair, pre, p)
	if sub.Empty() {
		t.Fatal("expected a non-empty subgraph")
	}

	ctxs := []PairContext{{Sub: sub, MaxRoadTime: pair.MaxRoadTime, MaxTime: pair.MaxTime}}
	reduced := Reduce(context.Background(), []int64{10, 11, 12}, ctxs, pre.Nodes)

	if len(reduced) != 1 {
		t.Fatalf("expected exactly one station to remain (all are mutually redundant), got %v", reduced)
	}
}
