package graph

import (
	"context"
	"testing"
)

func buildLine() *Graph {
	g := New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	g.AddNode(3, 0)
	g.AddArc(1, 2, 10, 10, 10)
	g.AddArc(2, 3, 5, 5, 5)
	g.AddArc(1, 3, 100, 100, 100)
	return g
}

func TestShortestPathPrefersCheaperRoute(t *testing.T) {
	g := buildLine()
	v := NewView(g)
	res := ShortestPath(context.Background(), v, 1, 3, RoadTimeWeight)
	if res.Cost != 15 {
		t.Fatalf("cost = %v, want 15", res.Cost)
	}
	want := []int64{1, 2, 3}
	if len(res.Path) != len(want) {
		t.Fatalf("path = %v, want %v", res.Path, want)
	}
	for i := range want {
		if res.Path[i] != want[i] {
			t.Fatalf("path = %v, want %v", res.Path, want)
		}
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	v := NewView(g)
	res := ShortestPath(context.Background(), v, 1, 2, RoadTimeWeight)
	if res.Path != nil || res.Cost != Infinity {
		t.Fatalf("expected unreachable, got %+v", res)
	}
}

func TestShortestPathMissingNode(t *testing.T) {
	g := New()
	g.AddNode(1, 0)
	v := NewView(g)
	res := ShortestPath(context.Background(), v, 1, 99, RoadTimeWeight)
	if res.Path != nil || res.Cost != Infinity {
		t.Fatalf("expected unreachable for missing node, got %+v", res)
	}
}

func TestSingleSourceDistances(t *testing.T) {
	g := buildLine()
	v := NewView(g)
	dist := SingleSource(context.Background(), v, 1, RoadTimeWeight)
	if dist[3] != 15 {
		t.Fatalf("dist[3] = %v, want 15", dist[3])
	}
}
