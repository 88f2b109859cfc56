package graph

import "testing"

func TestMinCutSimple(t *testing.T) {
	n := NewFlowNetwork()
	n.AddEdge(1, 2, 0.4)
	n.AddEdge(2, 3, Infinity)
	value, side := n.MinCut(1, 3)
	if value > 0.4+1e-6 || value < 0.4-1e-6 {
		t.Fatalf("min cut value = %v, want 0.4", value)
	}
	if !side[1] || side[3] {
		t.Fatalf("unexpected source side: %+v", side)
	}
}

func TestBoundaryDeterministic(t *testing.T) {
	g := New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	g.AddNode(3, 0)
	g.AddArc(1, 2, 1, 1, 1)
	g.AddArc(1, 3, 1, 1, 1)
	reach := map[int64]bool{1: true}
	b := Boundary(g, reach)
	if len(b) != 2 || b[0] != 2 || b[1] != 3 {
		t.Fatalf("boundary = %v, want [2 3]", b)
	}
}
