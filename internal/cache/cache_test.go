package cache

import (
	"context"
	"testing"
	"time"

	"chalet/internal/config"
	"chalet/internal/model"
	"chalet/internal/preprocess"
	"chalet/internal/subgraph"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := newMemoryCache()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	val, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v" {
		t.Fatalf("expected hit v, got %q ok=%v err=%v", val, ok, err)
	}
}

func TestRunCacheKeyStableAcrossSolverOnlyParamChanges(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeSite},
		{ID: 10, Type: model.NodeTypeStation, Cost: 5},
	}
	arcs := []model.Arc{
		{Tail: 1, Head: 10, RoadTime: 50, Distance: 50},
		{Tail: 10, Head: 2, RoadTime: 50, Distance: 50},
	}
	p := preprocess.FromConfig(config.Defaults().Parameters)
	pre, _, err := preprocess.Run(nodes, arcs, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	pair := model.ODPair{OriginID: 1, DestinationID: 2, Demand: 1, MaxRoadTime: 1000, MaxTime: 1000}

	k1 := RunCacheKey(pair, pre, p)
	k2 := RunCacheKey(pair, pre, p)
	if k1 != k2 {
		t.Fatalf("expected deterministic key, got %q vs %q", k1, k2)
	}

	tunedA := config.Defaults().Parameters
	tunedA.CostBudget = 1000
	tunedA.MaxRunTimeSec = 30
	tunedA.NumProc = 1
	tunedB := config.Defaults().Parameters
	tunedB.CostBudget = 999999
	tunedB.MaxRunTimeSec = 3600
	tunedB.NumProc = 16

	kA := RunCacheKey(pair, pre, preprocess.FromConfig(tunedA))
	kB := RunCacheKey(pair, pre, preprocess.FromConfig(tunedB))
	if kA != kB {
		t.Fatalf("expected key to ignore solver-only tuning parameters, got %q vs %q", kA, kB)
	}
}

func TestEncodeDecodeSubgraphRoundTrip(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeSite},
		{ID: 10, Type: model.NodeTypeStation, Cost: 5},
	}
	arcs := []model.Arc{
		{Tail: 1, Head: 10, RoadTime: 50, Distance: 50},
		{Tail: 10, Head: 2, RoadTime: 50, Distance: 50},
	}
	p := preprocess.FromConfig(config.Defaults().Parameters)
	pre, _, err := preprocess.Run(nodes, arcs, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	pair := model.ODPair{OriginID: 1, DestinationID: 2, Demand: 1, MaxRoadTime: 1000, MaxTime: 1000}
	sub := subgraph.Build(context.Background(), pair, pre, p)
	if sub.Empty() {
		t.Fatal("expected non-empty subgraph")
	}

	raw, err := EncodeSubgraph(sub)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeSubgraph(raw)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.G.NumNodes() != sub.G.NumNodes() {
		t.Fatalf("expected %d nodes, got %d", sub.G.NumNodes(), decoded.G.NumNodes())
	}
}
