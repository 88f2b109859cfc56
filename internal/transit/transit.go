// Package transit implements the bidirectional road-time/full-time
// conversion required by regulatory rest-break rules (§4.1).
package transit

import "math"

// Model converts between road time (driving only) and full time (driving
// plus mandated rest breaks) for a given maximum continuous driving block
// and break length. It is pure and holds no mutable state.
type Model struct {
	MaxRoadTimeOnce float64 // Rmax: longest continuous driving block before a break
	LegalBreakTime  float64 // B: length of one mandated break
}

// NewModel constructs a Model. maxRoadTimeOnce must be positive and
// legalBreakTime non-negative; config.Validate checks both at configuration
// time.
func NewModel(maxRoadTimeOnce, legalBreakTime float64) Model {
	return Model{MaxRoadTimeOnce: maxRoadTimeOnce, LegalBreakTime: legalBreakTime}
}

// BreakTime returns the total mandated break time accrued over r minutes of
// continuous road time: one break of length B per full Rmax block.
func (m Model) BreakTime(r float64) float64 {
	return math.Floor(r/m.MaxRoadTimeOnce) * m.LegalBreakTime
}

// FullTime returns road time plus its accrued break time.
func (m Model) FullTime(r float64) float64 {
	return r + m.BreakTime(r)
}

// RoadTime is the inverse of FullTime: given a total elapsed time budget t,
// returns the largest road time r such that FullTime(r) <= t.
func (m Model) RoadTime(t float64) float64 {
	block := m.MaxRoadTimeOnce + m.LegalBreakTime
	n := math.Floor(t / block)
	rem := t - n*block
	return (n + math.Min(rem/m.MaxRoadTimeOnce, 1)) * m.MaxRoadTimeOnce
}
