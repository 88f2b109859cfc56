package model

import "time"

// RunRecord is one persisted invocation of the CLI, written by the
// optional run history store.
type RunRecord struct {
	RunID             string
	StartedAt         time.Time
	FinishedAt        time.Time
	InputDir          string
	OutputDir         string
	ParameterSnapshot string // canonical JSON encoding of the resolved parameters
	ObjectiveMode     string // "min_cost" or "max_demand"
	ObjectiveValue    float64
	NumStationsBuilt  int
	NumPairsCovered   int
	Status            string // "ok" or "error"
	ErrorDetail       string
}
