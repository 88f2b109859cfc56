package preprocess

import (
	"chalet/internal/apperror"
	"chalet/internal/battery"
	"chalet/internal/config"
	"chalet/internal/model"
	"chalet/internal/transit"
)

// Params bundles the subset of resolved configuration the preprocessor
// needs, expressed in the domain's own terms.
type Params struct {
	TruckRange      float64
	SafeRange       float64 // truck_range - safety_margin
	MinState        float64 // safety_margin / truck_range
	ChargerPower    float64
	BatteryCapacity float64
	MinFuelTime     float64
	MaxFuelTime     float64
	DevFactor       float64
	MinDeviation    float64
	Transit         transit.Model
}

// FromConfig derives Params from a resolved config.ParametersConfig.
func FromConfig(p config.ParametersConfig) Params {
	return Params{
		TruckRange:      p.TruckRange,
		SafeRange:       p.SafeRange(),
		MinState:        p.MinState(),
		ChargerPower:    p.ChargerPower,
		BatteryCapacity: p.BatteryCapacity,
		MinFuelTime:     p.MinFuelTime,
		MaxFuelTime:     p.MaxFuelTime,
		DevFactor:       p.DevFactor,
		MinDeviation:    p.MinDeviation,
		Transit:         transit.NewModel(p.MaxRoadTimeOnce, p.LegalBreakTime),
	}
}

// Result is the fully preprocessed network ready for subgraph construction.
type Result struct {
	Nodes        map[int64]model.Node
	Arcs         []model.Arc
	Lookup       *Lookup
	FuelTimeBound float64
	UnknownSites []int64 // ids referenced by an OD pair but absent from Nodes, deduplicated
}

// Run executes steps 1-7 of §4.2 plus OD-pair direct-distance/time/bound
// derivation. It never mutates its inputs.
func Run(rawNodes []model.Node, rawArcs []model.Arc, pairs []model.ODPair, p Params) (*Result, []model.ODPair, error) {
	nodeIndex := make(map[int64]model.Node, len(rawNodes))
	for _, n := range rawNodes {
		nodeIndex[n.ID] = n
	}
	for id := range nodeIndex {
		if id <= 0 {
			return nil, nil, apperror.Inconsistency("node ids must be positive: auxiliary split nodes rely on the additive-inverse trick")
		}
	}

	// Step 2: drop arcs whose endpoints are unknown.
	known := make([]model.Arc, 0, len(rawArcs))
	for _, a := range rawArcs {
		_, tailOK := nodeIndex[a.Tail]
		_, headOK := nodeIndex[a.Head]
		if tailOK && headOK {
			known = append(known, a)
		}
	}

	// Step 1+3: self-loops plus the dense lookup map, built before filtering
	// so direct distance/time queries in the range filter always see the
	// unfiltered network.
	allNodes := make([]model.Node, 0, len(nodeIndex))
	for _, n := range nodeIndex {
		allNodes = append(allNodes, n)
	}
	lookup := BuildLookup(allNodes, known)

	// orig_range/dest_range (the max distance a site-adjacent arc may span)
	// and the station-to-station min_dist threshold are both derived from
	// safe_range, which config.Validate already guarantees is < truck_range;
	// the original's "reject if any of them exceeds truck_range" parameter
	// check is therefore unreachable under this derivation and is omitted.
	orig := p.SafeRange
	dest := p.SafeRange

	curve := battery.NewCurve(p.ChargerPower, p.BatteryCapacity)

	filtered := make([]model.Arc, 0, len(known))
	for _, a := range known {
		if a.Tail == a.Head {
			continue // drop self-loops from the working arc set (kept only in the lookup map)
		}
		tailNode := nodeIndex[a.Tail]
		headNode := nodeIndex[a.Head]

		if a.Distance > p.TruckRange {
			continue
		}
		if headNode.Type == model.NodeTypeSite && a.Distance > p.TruckRange-dest {
			continue
		}
		if tailNode.Type == model.NodeTypeSite && a.Distance > orig {
			continue
		}
		if tailNode.Type == model.NodeTypeStation && headNode.Type == model.NodeTypeStation && a.Distance < 0.2*p.SafeRange {
			continue
		}
		if tailNode.Type == model.NodeTypeSite && headNode.Type == model.NodeTypeSite {
			continue
		}

		fuelTime := fuelTime(curve, p, tailNode, headNode, a.Distance, dest)
		if tailNode.Type == model.NodeTypeStation && (fuelTime < p.MinFuelTime || fuelTime > p.MaxFuelTime) {
			continue
		}

		a.FuelTime = fuelTime
		a.BreakTime = p.Transit.BreakTime(a.RoadTime)
		filtered = append(filtered, a)
	}

	fuelTimeBound := curve.WithBreakpoints(0, 1).RechargeTime(p.MinState, 1)

	processedPairs, unknown := preprocessPairs(pairs, nodeIndex, lookup, p)

	return &Result{
		Nodes:         nodeIndex,
		Arcs:          filtered,
		Lookup:        lookup,
		FuelTimeBound: fuelTimeBound,
		UnknownSites:  unknown,
	}, processedPairs, nil
}

func fuelTime(curve battery.Curve, p Params, tail, head model.Node, distance, dest float64) float64 {
	if tail.Type == model.NodeTypeSite {
		return 0
	}
	if head.Type == model.NodeTypeStation {
		return curve.RechargeTime(p.MinState, p.MinState+distance/p.TruckRange)
	}
	return curve.RechargeTime(p.MinState, p.MinState+(distance+dest)/p.TruckRange)
}

func preprocessPairs(pairs []model.ODPair, nodes map[int64]model.Node, lookup *Lookup, p Params) ([]model.ODPair, []int64) {
	out := make([]model.ODPair, len(pairs))
	seenUnknown := make(map[int64]bool)
	var unknown []int64

	for i, pair := range pairs {
		out[i] = pair
		if _, ok := nodes[pair.OriginID]; !ok {
			if !seenUnknown[pair.OriginID] {
				seenUnknown[pair.OriginID] = true
				unknown = append(unknown, pair.OriginID)
			}
		}
		if _, ok := nodes[pair.DestinationID]; !ok {
			if !seenUnknown[pair.DestinationID] {
				seenUnknown[pair.DestinationID] = true
				unknown = append(unknown, pair.DestinationID)
			}
		}
		if seenUnknown[pair.OriginID] || seenUnknown[pair.DestinationID] {
			out[i].Feasible = false
			continue
		}

		entry := lookup.Get(pair.OriginID, pair.DestinationID)
		out[i].DirectDistance = entry.Distance
		out[i].DirectTime = p.Transit.FullTime(entry.RoadTime)

		maxByFactor := out[i].DirectTime * p.DevFactor
		maxByDeviation := out[i].DirectTime + p.MinDeviation
		maxTime := maxByFactor
		if maxByDeviation > maxTime {
			maxTime = maxByDeviation
		}
		out[i].MaxTime = maxTime
		out[i].MaxRoadTime = p.Transit.RoadTime(maxTime)
		out[i].Feasible = entry.RoadTime < model.Infinity
	}

	return out, unknown
}
