package csp

import (
	"context"
	"testing"

	"chalet/internal/graph"
)

func TestTimeFeasiblePathDirectArc(t *testing.T) {
	g := graph.New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	g.AddArc(1, 2, 10, 10, 10)
	v := graph.NewView(g)

	res := TimeFeasiblePath(context.Background(), v, 1, 2, 20, 20)
	if res.Path == nil {
		t.Fatal("expected a feasible path")
	}
	if len(res.Path) != 2 || res.Path[0] != 1 || res.Path[1] != 2 {
		t.Fatalf("unexpected path: %v", res.Path)
	}
}

func TestTimeFeasiblePathInfeasible(t *testing.T) {
	g := graph.New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	g.AddArc(1, 2, 100, 100, 100)
	v := graph.NewView(g)

	res := TimeFeasiblePath(context.Background(), v, 1, 2, 10, 10)
	if res.Path != nil {
		t.Fatalf("expected infeasible, got %v", res.Path)
	}
}

// TestLaracTightness models the scenario from §8.5: one path satisfies the
// road-time bound but violates total-time, the other path is the reverse.
func TestLaracTightness(t *testing.T) {
	g := graph.New()
	g.AddNode(1, 0)
	g.AddNode(2, 0)
	g.AddNode(3, 0)

	// Path A (1->2->3): cheap road time, expensive total time (lots of fuel/break time).
	g.AddArc(1, 2, 5, 5, 50)
	g.AddArc(2, 3, 5, 5, 50)

	// Path B (1->3 direct): expensive road time, cheap total time.
	g.AddArc(1, 3, 50, 50, 55)

	v := graph.NewView(g)

	res := TimeFeasiblePath(context.Background(), v, 1, 3, 60, 60)
	if res.Path == nil {
		t.Fatal("expected a feasible path to exist")
	}
	road := 0.0
	full := 0.0
	for i := 0; i+1 < len(res.Path); i++ {
		for _, e := range g.Out(res.Path[i]) {
			if e.To == res.Path[i+1] {
				road += e.RoadTime
				full += e.FullTime
			}
		}
	}
	if road > 60+1e-6 || full > 60+1e-6 {
		t.Fatalf("returned path violates a bound: road=%v full=%v", road, full)
	}
}
