package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"chalet/internal/apperror"
	"chalet/internal/graph"
	"chalet/internal/model"
	"chalet/internal/preprocess"
	"chalet/internal/subgraph"
)

// wireNode/wireArc mirror the subset of graph.Graph state needed to
// reconstruct a Subgraph through its public API; graph.Graph's adjacency
// maps are unexported, so encoding the graph directly isn't possible.
type wireNode struct {
	ID   int64
	Cost float64
}

type wireArc struct {
	Tail, Head                        int64
	RoadTime, Distance, FullTime, Cap float64
}

type wirePayload struct {
	Nodes       []wireNode
	Arcs        []wireArc
	Origin      int64
	Destination int64
	Candidates  []int64
}

// EncodeSubgraph serializes s into a cache payload.
func EncodeSubgraph(s *subgraph.Subgraph) ([]byte, error) {
	payload := wirePayload{Origin: s.Origin, Destination: s.Destination, Candidates: s.Candidates}
	for _, id := range s.G.Nodes() {
		payload.Nodes = append(payload.Nodes, wireNode{ID: id, Cost: s.G.Cost(id)})
		for _, e := range s.G.Out(id) {
			payload.Arcs = append(payload.Arcs, wireArc{
				Tail: id, Head: e.To, RoadTime: e.RoadTime, Distance: e.Distance, FullTime: e.FullTime, Cap: e.Capacity,
			})
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, apperror.Callback("subgraph cache encode failed", err)
	}
	return buf.Bytes(), nil
}

// DecodeSubgraph reconstructs a Subgraph from a payload produced by
// EncodeSubgraph.
func DecodeSubgraph(data []byte) (*subgraph.Subgraph, error) {
	var payload wirePayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, apperror.Callback("subgraph cache decode failed", err)
	}
	g := graph.New()
	for _, n := range payload.Nodes {
		g.AddNode(n.ID, n.Cost)
	}
	for _, a := range payload.Arcs {
		g.AddArc(a.Tail, a.Head, a.RoadTime, a.Distance, a.FullTime)
	}
	return &subgraph.Subgraph{G: g, Origin: payload.Origin, Destination: payload.Destination, Candidates: payload.Candidates}, nil
}

// BuildCached wraps subgraph.Build with a cache lookup keyed by RunCacheKey.
// A cache error is logged-worthy but never fatal: callers fall back to a
// fresh Build on any Get/Set failure, since the cache is strictly an
// optimization.
func BuildCached(ctx context.Context, c Cache, pair model.ODPair, pre *preprocess.Result, p preprocess.Params, ttl time.Duration) *subgraph.Subgraph {
	key := RunCacheKey(pair, pre, p)
	if raw, ok, err := c.Get(ctx, key); err == nil && ok {
		if sub, decErr := DecodeSubgraph(raw); decErr == nil {
			return sub
		}
	}

	sub := subgraph.Build(ctx, pair, pre, p)
	if raw, err := EncodeSubgraph(sub); err == nil {
		_ = c.Set(ctx, key, raw, ttl)
	}
	return sub
}
