package subgraph

import (
	"context"
	"testing"

	"chalet/internal/config"
	"chalet/internal/model"
	"chalet/internal/preprocess"
)

func buildPre(t *testing.T, nodes []model.Node, arcs []model.Arc) (*preprocess.Result, preprocess.Params) {
	t.Helper()
	p := preprocess.FromConfig(config.Defaults().Parameters)
	res, _, err := preprocess.Run(nodes, arcs, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	return res, p
}

func TestBuildEmptyWhenOriginMissing(t *testing.T) {
	nodes := []model.Node{{ID: 2, Type: model.NodeTypeSite}}
	pre, p := buildPre(t, nodes, nil)
	pair := model.ODPair{OriginID: 1, DestinationID: 2, MaxRoadTime: 100, MaxTime: 100}
	sub := Build(context.Background(), pair, pre, p)
	if !sub.Empty() {
		t.Fatal("expected empty subgraph when origin is absent")
	}
}

func TestSplitProducesSingleZeroWeightExit(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeStation, Cost: 5},
		{ID: 3, Type: model.NodeTypeSite},
	}
	arcs := []model.Arc{
		{Tail: 1, Head: 2, RoadTime: 50, Distance: 50},
		{Tail: 2, Head: 3, RoadTime: 50, Distance: 50},
	}
	pre, p := buildPre(t, nodes, arcs)
	pair := model.ODPair{OriginID: 1, DestinationID: 3, MaxRoadTime: 1000, MaxTime: 1000}
	sub := Build(context.Background(), pair, pre, p)
	if sub.Empty() {
		t.Fatal("expected a non-empty subgraph")
	}
	found := false
	for _, c := range sub.Candidates {
		if c == 2 {
			found = true
			out := sub.G.Out(2)
			if len(out) != 1 || out[0].To != model.AuxiliaryID(2) {
				t.Fatalf("candidate 2 must have exactly one outgoing arc to its auxiliary, got %+v", out)
			}
			if out[0].RoadTime != 0 || out[0].Distance != 0 || out[0].FullTime != 0 {
				t.Fatalf("split arc must carry all-zero weights, got %+v", out[0])
			}
		}
	}
	if !found {
		t.Fatal("expected node 2 to be split as a candidate")
	}
}
