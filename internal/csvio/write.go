package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chalet/internal/apperror"
)

// CoverageRow is one line of od_coverage.csv: the original pair plus the
// columns §6 specifies preprocessing/solving append.
type CoverageRow struct {
	OriginID       int64
	DestinationID  int64
	Demand         float64
	DirectDistance float64
	DirectTime     float64
	Feasible       bool
	Stations       []int64 // slash-separated station ids used on the chosen path
	FuelStops      int
	RouteDistance  float64
	RouteTime      float64
}

// StationRow is one line of stations.csv.
type StationRow struct {
	ID     int64
	Type   string
	Demand float64
	Energy float64
}

// WriteCoverage writes od_coverage.csv to dir.
func WriteCoverage(dir string, rows []CoverageRow) error {
	path := filepath.Join(dir, "od_coverage.csv")
	return writeCSV(path, []string{
		"ORIGIN_ID", "DESTINATION_ID", "DEMAND", "DIRECT_DISTANCE", "DIRECT_TIME",
		"FEASIBLE", "STATIONS", "FUEL_STOPS", "ROUTE_DISTANCE", "ROUTE_TIME",
	}, len(rows), func(w *csv.Writer) error {
		for _, r := range rows {
			stations := make([]string, len(r.Stations))
			for i, s := range r.Stations {
				stations[i] = strconv.FormatInt(s, 10)
			}
			rec := []string{
				strconv.FormatInt(r.OriginID, 10),
				strconv.FormatInt(r.DestinationID, 10),
				formatFloat(r.Demand),
				formatFloat(r.DirectDistance),
				formatFloat(r.DirectTime),
				strconv.FormatBool(r.Feasible),
				strings.Join(stations, "/"),
				strconv.Itoa(r.FuelStops),
				formatFloat(r.RouteDistance),
				formatFloat(r.RouteTime),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteStations writes stations.csv to dir.
func WriteStations(dir string, rows []StationRow) error {
	path := filepath.Join(dir, "stations.csv")
	return writeCSV(path, []string{"ID", "TYPE", "DEMAND", "ENERGY"}, len(rows), func(w *csv.Writer) error {
		for _, r := range rows {
			rec := []string{strconv.FormatInt(r.ID, 10), r.Type, formatFloat(r.Demand), formatFloat(r.Energy)}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteUnknownSites writes unknown_sites.csv to dir: deduplicated ids that
// appeared in od_pairs.csv but not in nodes.csv.
func WriteUnknownSites(dir string, ids []int64) error {
	path := filepath.Join(dir, "unknown_sites.csv")
	return writeCSV(path, []string{"ID"}, len(ids), func(w *csv.Writer) error {
		for _, id := range ids {
			if err := w.Write([]string{strconv.FormatInt(id, 10)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, header []string, _ int, body func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperror.Load(path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperror.Load(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return apperror.Load(path, err)
	}
	if err := body(w); err != nil {
		return apperror.Load(path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperror.Load(path, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
