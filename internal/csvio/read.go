// Package csvio implements the filesystem input/output contract of §6:
// nodes.csv, arcs.csv, od_pairs.csv on read; od_coverage.csv, stations.csv,
// unknown_sites.csv on write.
package csvio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chalet/internal/apperror"
	"chalet/internal/model"
)

// ReadNodes loads nodes.csv: ID, TYPE, COST, [LATITUDE, LONGITUDE, NAME].
func ReadNodes(dir string) ([]model.Node, error) {
	path := filepath.Join(dir, "nodes.csv")
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, path, "ID", "TYPE", "COST")
	if err != nil {
		return nil, err
	}
	latIdx, hasLat := indexOf(header, "LATITUDE")
	lonIdx, hasLon := indexOf(header, "LONGITUDE")
	nameIdx, hasName := indexOf(header, "NAME")

	nodes := make([]model.Node, 0, len(records))
	for i, rec := range records {
		id, err := parseInt(rec[idx["ID"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		typ, err := parseNodeType(rec[idx["TYPE"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		cost, err := parseFloat(rec[idx["COST"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		if cost < 0 {
			return nil, apperror.Load(path, nil).WithDetail("row", i+2).WithDetail("reason", "negative cost")
		}
		n := model.Node{ID: id, Type: typ, Cost: cost}
		if hasLat && latIdx < len(rec) {
			n.Latitude, _ = parseFloat(rec[latIdx])
		}
		if hasLon && lonIdx < len(rec) {
			n.Longitude, _ = parseFloat(rec[lonIdx])
		}
		if hasName && nameIdx < len(rec) {
			n.Name = rec[nameIdx]
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ReadArcs loads arcs.csv: TAIL_ID, HEAD_ID, TIME, DISTANCE.
func ReadArcs(dir string) ([]model.Arc, error) {
	path := filepath.Join(dir, "arcs.csv")
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, path, "TAIL_ID", "HEAD_ID", "TIME", "DISTANCE")
	if err != nil {
		return nil, err
	}
	arcs := make([]model.Arc, 0, len(records))
	for i, rec := range records {
		tail, err := parseInt(rec[idx["TAIL_ID"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		head, err := parseInt(rec[idx["HEAD_ID"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		time, err := parseFloat(rec[idx["TIME"]])
		if err != nil || time < 0 {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		dist, err := parseFloat(rec[idx["DISTANCE"]])
		if err != nil || dist < 0 {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		arcs = append(arcs, model.Arc{Tail: tail, Head: head, RoadTime: time, Distance: dist})
	}
	return arcs, nil
}

// ReadODPairs loads od_pairs.csv: ORIGIN_ID, DESTINATION_ID, [DEMAND],
// default demand 1.0 when the column or value is absent.
func ReadODPairs(dir string) ([]model.ODPair, error) {
	path := filepath.Join(dir, "od_pairs.csv")
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, path, "ORIGIN_ID", "DESTINATION_ID")
	if err != nil {
		return nil, err
	}
	demandIdx, hasDemand := indexOf(header, "DEMAND")

	pairs := make([]model.ODPair, 0, len(records))
	for i, rec := range records {
		origin, err := parseInt(rec[idx["ORIGIN_ID"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		dest, err := parseInt(rec[idx["DESTINATION_ID"]])
		if err != nil {
			return nil, apperror.Load(path, err).WithDetail("row", i+2)
		}
		demand := 1.0
		if hasDemand && demandIdx < len(rec) && strings.TrimSpace(rec[demandIdx]) != "" {
			demand, err = parseFloat(rec[demandIdx])
			if err != nil || demand < 0 {
				return nil, apperror.Load(path, err).WithDetail("row", i+2)
			}
		}
		pairs = append(pairs, model.ODPair{OriginID: origin, DestinationID: dest, Demand: demand})
	}
	return pairs, nil
}

func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperror.Load(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, apperror.Load(path, err)
	}
	for i := range header {
		header[i] = strings.ToUpper(strings.TrimSpace(header[i]))
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, apperror.Load(path, err)
	}
	return records, header, nil
}

func columnIndex(header []string, path string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, apperror.Load(path, nil).WithDetail("missing_column", col)
		}
	}
	return idx, nil
}

func indexOf(header []string, name string) (int, bool) {
	for i, h := range header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseNodeType(s string) (model.NodeType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SITE":
		return model.NodeTypeSite, nil
	case "STATION":
		return model.NodeTypeStation, nil
	default:
		return 0, apperror.Parameter("TYPE", "node TYPE must be SITE or STATION, got "+s)
	}
}
