package preprocess

import (
	"testing"

	"chalet/internal/config"
	"chalet/internal/model"
)

func testParams() Params {
	return FromConfig(config.Defaults().Parameters)
}

func TestRunDropsSiteToSiteArcs(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeSite},
	}
	arcs := []model.Arc{{Tail: 1, Head: 2, RoadTime: 10, Distance: 10}}

	res, _, err := Run(nodes, arcs, nil, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Arcs) != 0 {
		t.Fatalf("expected site-to-site arc to be dropped, got %v", res.Arcs)
	}
}

func TestRunKeepsSiteToStationArc(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Type: model.NodeTypeSite},
		{ID: 2, Type: model.NodeTypeStation, Cost: 5},
	}
	arcs := []model.Arc{{Tail: 1, Head: 2, RoadTime: 10, Distance: 10}}

	res, _, err := Run(nodes, arcs, nil, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Arcs) != 1 {
		t.Fatalf("expected one arc, got %v", res.Arcs)
	}
	if res.Arcs[0].FuelTime != 0 {
		t.Fatalf("site-origin arc should have zero fuel time, got %v", res.Arcs[0].FuelTime)
	}
}

func TestRunUnknownSitesDeduplicated(t *testing.T) {
	nodes := []model.Node{{ID: 1, Type: model.NodeTypeSite}}
	pairs := []model.ODPair{
		{OriginID: 1, DestinationID: 99},
		{OriginID: 1, DestinationID: 99},
	}
	res, processed, err := Run(nodes, nil, pairs, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.UnknownSites) != 1 || res.UnknownSites[0] != 99 {
		t.Fatalf("expected one deduplicated unknown site, got %v", res.UnknownSites)
	}
	for _, p := range processed {
		if p.Feasible {
			t.Fatalf("pair with unknown endpoint must not be feasible: %+v", p)
		}
	}
}

func TestRunRejectsNonPositiveIDs(t *testing.T) {
	nodes := []model.Node{{ID: 0, Type: model.NodeTypeSite}}
	if _, _, err := Run(nodes, nil, nil, testParams()); err == nil {
		t.Fatal("expected an error for a non-positive node id")
	}
}
