package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"

	"chalet/internal/model"
	"chalet/internal/preprocess"
)

// RunCacheKey hashes the subset of inputs that affect subgraph.Build's
// output for one pair: the preprocessed network, the pair's own fields, and
// every Params field subgraph construction reads. Two runs over the same
// input directory that only change MIP-tuning parameters (cost_budget,
// max_run_time, num_proc) hash identically and hit the cache.
func RunCacheKey(pair model.ODPair, pre *preprocess.Result, p preprocess.Params) string {
	h := sha256.New()

	writeFloat := func(f float64) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	writeInt := func(i int64) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h.Write(buf[:])
	}

	ids := make([]int64, 0, len(pre.Nodes))
	for id := range pre.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		n := pre.Nodes[id]
		writeInt(n.ID)
		h.Write([]byte{byte(n.Type)})
		writeFloat(n.Cost)
	}

	arcs := append([]model.Arc(nil), pre.Arcs...)
	sort.Slice(arcs, func(i, j int) bool {
		if arcs[i].Tail != arcs[j].Tail {
			return arcs[i].Tail < arcs[j].Tail
		}
		return arcs[i].Head < arcs[j].Head
	})
	for _, a := range arcs {
		writeInt(a.Tail)
		writeInt(a.Head)
		writeFloat(a.RoadTime)
		writeFloat(a.Distance)
		writeFloat(a.FuelTime)
		writeFloat(a.BreakTime)
	}

	writeInt(pair.OriginID)
	writeInt(pair.DestinationID)
	writeFloat(pair.Demand)
	writeFloat(pair.MaxRoadTime)
	writeFloat(pair.MaxTime)

	writeFloat(p.TruckRange)
	writeFloat(p.SafeRange)
	writeFloat(p.MinState)
	writeFloat(p.ChargerPower)
	writeFloat(p.BatteryCapacity)
	writeFloat(p.MinFuelTime)
	writeFloat(p.MaxFuelTime)
	writeFloat(p.DevFactor)
	writeFloat(p.MinDeviation)

	return "chalet:subgraph:" + hex.EncodeToString(h.Sum(nil))
}
