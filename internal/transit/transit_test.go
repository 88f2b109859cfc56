package transit

import (
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	m := NewModel(270, 45)
	for _, r := range []float64{0, 50, 270, 271, 400, 540, 541, 1000} {
		got := m.RoadTime(m.FullTime(r))
		if math.Abs(got-r) > 1e-9 {
			t.Errorf("RoadTime(FullTime(%v)) = %v, want %v", r, got, r)
		}
	}
}

func TestBreakTime(t *testing.T) {
	m := NewModel(270, 45)
	cases := []struct {
		r    float64
		want float64
	}{
		{0, 0},
		{269, 0},
		{270, 45},
		{539, 45},
		{540, 90},
	}
	for _, c := range cases {
		if got := m.BreakTime(c.r); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("BreakTime(%v) = %v, want %v", c.r, got, c.want)
		}
	}
}

func TestFullTimeAddsBreaks(t *testing.T) {
	m := NewModel(270, 45)
	if got, want := m.FullTime(270), 315.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("FullTime(270) = %v, want %v", got, want)
	}
}
