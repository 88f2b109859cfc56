package metrics

import "testing"

func TestNewRegistersWithoutPanic(t *testing.T) {
	m, reg := New()
	if m == nil || reg == nil {
		t.Fatal("expected non-nil metrics and registry")
	}
	m.NodesExplored.Inc()
	m.CutsEmitted.WithLabelValues("integer").Inc()
	m.IncumbentObjective.Set(42)

	mf, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(mf) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}
