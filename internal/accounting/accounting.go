// Package accounting implements the station-usage accounting of §4.9:
// recovering each covered pair's active-subset path, attributing demand to
// the stations visited, and computing charged energy per stop.
package accounting

import (
	"context"

	"chalet/internal/feasibility"
	"chalet/internal/graph"
	"chalet/internal/model"
	"chalet/internal/subgraph"
)

// PairUsage is one pair's outcome: its route metrics plus the ordered list
// of real (non-auxiliary) station stops it visits.
type PairUsage struct {
	OriginID      int64
	DestinationID int64
	Demand        float64
	RouteDistance float64
	RouteTime     float64
	FuelStops     int
	Stations      []int64
}

// StationUsage aggregates, per selected station, the demand that passes
// through it and the energy it charges.
type StationUsage struct {
	StationID     int64
	DemandServed  float64
	ChargedEnergy float64
	Visits        int
}

// Params bundles the two constants §4.9's energy formula needs.
type Params struct {
	BatteryCapacity float64
	TruckRange      float64
}

// Compute recovers each covered pair's time-feasible path under the final
// station selection and produces per-pair and per-station usage reports.
func Compute(ctx context.Context, nodes map[int64]model.Node, pairs []model.ODPair, subs []*subgraph.Subgraph, selected map[int64]bool, covered map[int]bool, params Params) ([]PairUsage, []StationUsage) {
	energyPerUnit := params.BatteryCapacity / params.TruckRange

	stationTotals := make(map[int64]*StationUsage)
	var pairUsages []PairUsage

	for i, pair := range pairs {
		if !covered[i] || subs[i].Empty() {
			continue
		}
		sub := subs[i]
		ok, path := feasibility.Covered(ctx, sub, nodes, selected, pair.MaxRoadTime, pair.MaxTime)
		if !ok {
			continue
		}

		usage := PairUsage{OriginID: pair.OriginID, DestinationID: pair.DestinationID, Demand: pair.Demand}
		for idx := 0; idx+1 < len(path); idx++ {
			u, next := path[idx], path[idx+1]
			edge, ok := findEdge(sub, u, next)
			if !ok {
				continue
			}
			usage.RouteDistance += edge.Distance
			usage.RouteTime += edge.FullTime

			if model.IsAuxiliary(u) {
				continue
			}
			n, known := nodes[u]
			if !known || n.Type != model.NodeTypeStation {
				continue
			}
			usage.FuelStops++
			usage.Stations = append(usage.Stations, u)

			// A split candidate's stop is the zero-distance (u, -u) arc; the leg
			// its charge covers is the arc leaving -u.
			leg, legHead := edge, next
			if next == model.AuxiliaryID(u) && idx+2 < len(path) {
				if e2, ok2 := findEdge(sub, next, path[idx+2]); ok2 {
					leg, legHead = e2, path[idx+2]
				}
			}
			energy := leg.Distance * energyPerUnit * pair.Demand
			nextNode, nextKnown := nodes[legHead]
			if nextKnown && nextNode.Type == model.NodeTypeSite {
				energy += leg.Distance * energyPerUnit * pair.Demand
			}

			st, exists := stationTotals[u]
			if !exists {
				st = &StationUsage{StationID: u}
				stationTotals[u] = st
			}
			st.DemandServed += pair.Demand
			st.ChargedEnergy += energy
			st.Visits++
		}
		pairUsages = append(pairUsages, usage)
	}

	stations := make([]StationUsage, 0, len(stationTotals))
	for _, st := range stationTotals {
		stations = append(stations, *st)
	}
	return pairUsages, stations
}

func findEdge(sub *subgraph.Subgraph, u, next int64) (graph.Edge, bool) {
	for _, e := range sub.G.Out(u) {
		if e.To == next {
			return e, true
		}
	}
	return graph.Edge{}, false
}
