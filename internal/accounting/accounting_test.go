package accounting

import (
	"context"
	"testing"

	"chalet/internal/config"
	"chalet/internal/model"
	"chalet/internal/preprocess"
	"chalet/internal/subgraph"
)

func TestComputeAttributesDemandToVisitedStation(t *testing.T) {
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

	pair := model.ODPair{OriginID: 1, DestinationID: 2, Demand: 4, MaxRoadTime: 1000, MaxTime: 1000}
	sub := subgraph.Build(context.Background(), pair, pre, p)
	if sub.Empty() {
		t.Fatal("expected a non-empty subgraph")
	}

	selected := map[int64]bool{10: true}
	covered := map[int]bool{0: true}
	params := Params{BatteryCapacity: p.BatteryCapacity, TruckRange: p.TruckRange}

	pairUsages, stations := Compute(context.Background(), pre.Nodes, []model.ODPair{pair}, []*subgraph.Subgraph{sub}, selected, covered, params)

	if len(pairUsages) != 1 {
		t.Fatalf("expected one pair usage, got %d", len(pairUsages))
	}
	if pairUsages[0].FuelStops != 1 || len(pairUsages[0].Stations) != 1 || pairUsages[0].Stations[0] != 10 {
		t.Fatalf("expected one stop at station 10, got %+v", pairUsages[0])
	}
	if len(stations) != 1 || stations[0].StationID != 10 || stations[0].DemandServed != 4 {
		t.Fatalf("expected station 10 to serve demand 4, got %+v", stations)
	}
}
