package csvio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadNodesAndArcs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nodes.csv", "ID,TYPE,COST\n1,SITE,0\n2,STATION,5\n")
	writeFile(t, dir, "arcs.csv", "TAIL_ID,HEAD_ID,TIME,DISTANCE\n1,2,10,10\n")
	writeFile(t, dir, "od_pairs.csv", "ORIGIN_ID,DESTINATION_ID\n1,2\n")

	nodes, err := ReadNodes(dir)
	if err != nil || len(nodes) != 2 {
		t.Fatalf("ReadNodes: %v %v", nodes, err)
	}
	arcs, err := ReadArcs(dir)
	if err != nil || len(arcs) != 1 {
		t.Fatalf("ReadArcs: %v %v", arcs, err)
	}
	pairs, err := ReadODPairs(dir)
	if err != nil || len(pairs) != 1 || pairs[0].Demand != 1.0 {
		t.Fatalf("ReadODPairs: %v %v", pairs, err)
	}
}

func TestReadNodesBadType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nodes.csv", "ID,TYPE,COST\n1,WEIRD,0\n")
	if _, err := ReadNodes(dir); err == nil {
		t.Fatal("expected an error for an unknown node type")
	}
}

func TestWriteCoverageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	err := WriteCoverage(dir, []CoverageRow{
		{OriginID: 1, DestinationID: 2, Demand: 1, DirectDistance: 10, DirectTime: 10, Feasible: true, Stations: nil, RouteTime: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "od_coverage.csv"))
	if err != nil || len(data) == 0 {
		t.Fatalf("expected a non-empty od_coverage.csv: %v", err)
	}
}
