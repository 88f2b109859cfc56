// Command chalet runs the charging-station placement pipeline end to end:
// load and preprocess the network, build per-pair subgraphs, solve the
// branch-and-cut station selection, and write coverage/station CSVs (plus
// any optional report/history/metrics artifacts) to the output directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"chalet/internal/accounting"
	"chalet/internal/apperror"
	"chalet/internal/cache"
	"chalet/internal/config"
	"chalet/internal/csvio"
	"chalet/internal/history"
	"chalet/internal/logging"
	"chalet/internal/metrics"
	"chalet/internal/mip"
	"chalet/internal/model"
	"chalet/internal/preprocess"
	"chalet/internal/report"
	"chalet/internal/subgraph"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("chalet", flag.ContinueOnError)
	inputDir := fs.String("i", "data/", "input directory (nodes.csv, arcs.csv, od_pairs.csv, parameters.json)")
	outputDir := fs.String("o", "output/", "output directory")
	configPath := fs.String("config", "", "optional config.yaml path")
	enableCache := fs.Bool("cache", false, "enable the run-result cache")
	enableHistory := fs.Bool("history", false, "enable the run history store and print a trend report")
	enableReport := fs.Bool("report", false, "emit report.xlsx and summary.pdf")
	metricsAddr := fs.String("metrics-addr", "", "address to serve Prometheus /metrics on (empty disables)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	runID := uuid.NewString()
	started := time.Now()

	loader := config.NewLoader(config.WithConfigPath(*configPath))
	cfg, err := loader.Load(filepath.Join(*inputDir, "parameters.json"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *enableCache {
		cfg.Cache.Enabled = true
	}
	if *enableHistory {
		cfg.Database.Enabled = true
	}
	if *enableReport {
		cfg.Report.Enabled = true
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}

	log := logging.WithRun(logging.New(logConfigFrom(cfg.Log)), runID)
	ctx := logging.IntoContext(context.Background(), log)

	rec := model.RunRecord{RunID: runID, StartedAt: started, InputDir: *inputDir, OutputDir: *outputDir}
	var stationUsages []accounting.StationUsage

	if err := execute(ctx, log, cfg, *inputDir, *outputDir, &rec, &stationUsages); err != nil {
		rec.Status = "error"
		rec.ErrorDetail = err.Error()
		rec.FinishedAt = time.Now()
		logErr(log, err)
		persistHistory(ctx, log, cfg, rec, stationUsages, *enableHistory, *inputDir)
		return 1
	}

	rec.Status = "ok"
	rec.FinishedAt = time.Now()
	persistHistory(ctx, log, cfg, rec, stationUsages, *enableHistory, *inputDir)
	return 0
}

func logConfigFrom(l config.LogConfig) logging.Config {
	return logging.Config{
		Level:      l.Level,
		Format:     l.Format,
		OutputPath: l.OutputPath,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}

func logErr(log *slog.Logger, err error) {
	var appErr *apperror.Error
	if apperror.As(err, &appErr) {
		log.Error("run failed", "code", appErr.Code, "message", appErr.Message, "field", appErr.Field)
		return
	}
	log.Error("run failed", "error", err.Error())
}

func execute(ctx context.Context, log *slog.Logger, cfg *config.Config, inputDir, outputDir string, rec *model.RunRecord, stationUsagesOut *[]accounting.StationUsage) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		var reg *prometheus.Registry
		m, reg = metrics.New()
		srv := metrics.NewServer(cfg.Metrics.Addr, reg)
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := srv.Start(srvCtx); err != nil {
				log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}
	defer c.Close()

	nodes, err := csvio.ReadNodes(inputDir)
	if err != nil {
		return err
	}
	arcs, err := csvio.ReadArcs(inputDir)
	if err != nil {
		return err
	}
	rawPairs, err := csvio.ReadODPairs(inputDir)
	if err != nil {
		return err
	}

	params := preprocess.FromConfig(cfg.Parameters)
	pre, pairs, err := preprocess.Run(nodes, arcs, rawPairs, params)
	if err != nil {
		return err
	}

	subs := buildSubgraphs(ctx, c, cfg, pairs, pre, params, m)

	maxRunTime := time.Duration(cfg.Parameters.MaxRunTimeSec * float64(time.Second))
	solveStart := time.Now()
	assignment := mip.Run(ctx, pre.Nodes, pairs, subs, cfg.Parameters.CostBudget, maxRunTime)
	if assignment == nil {
		// MIP-level infeasibility: report an empty selection covering nothing.
		assignment = &mip.Assignment{Selected: map[int64]bool{}, Covered: map[int]bool{}}
	}
	solveWall := time.Since(solveStart)
	if m != nil {
		m.SolveSeconds.Observe(solveWall.Seconds())
	}

	accParams := accounting.Params{BatteryCapacity: cfg.Parameters.BatteryCapacity, TruckRange: cfg.Parameters.TruckRange}
	pairUsages, stationUsages := accounting.Compute(ctx, pre.Nodes, pairs, subs, assignment.Selected, assignment.Covered, accParams)
	*stationUsagesOut = stationUsages

	coverage := buildCoverageRows(pairs, pairUsages, assignment.Covered)
	stationRows := buildStationRows(pre.Nodes, assignment.Selected, stationUsages)

	if err := csvio.WriteCoverage(outputDir, coverage); err != nil {
		return err
	}
	if err := csvio.WriteStations(outputDir, stationRows); err != nil {
		return err
	}
	if err := csvio.WriteUnknownSites(outputDir, pre.UnknownSites); err != nil {
		return err
	}

	mode := "min_cost"
	objective := totalCost(pre.Nodes, assignment.Selected)
	if !math.IsInf(cfg.Parameters.CostBudget, 1) {
		mode = "max_demand"
		objective = coveredDemand(pairs, assignment.Covered)
	}
	summary := report.Summary{
		Mode:            mode,
		ObjectiveValue:  objective,
		NumStations:     len(assignment.Selected),
		NumPairsCovered: len(assignment.Covered),
		NumPairsTotal:   len(pairs),
		WallTimeSeconds: solveWall.Seconds(),
	}
	if cfg.Report.Enabled {
		if err := report.WriteAll(outputDir, summary, coverage, stationRows, stationUsages); err != nil {
			return err
		}
	}

	snapshot, _ := json.Marshal(cfg.Parameters)
	rec.ParameterSnapshot = string(snapshot)
	rec.ObjectiveMode = mode
	rec.ObjectiveValue = objective
	rec.NumStationsBuilt = len(assignment.Selected)
	rec.NumPairsCovered = len(assignment.Covered)

	log.Info("run complete",
		"mode", mode, "objective", objective,
		"stations", len(assignment.Selected), "covered", len(assignment.Covered), "total_pairs", len(pairs),
		"wall_time", solveWall,
	)
	return nil
}

func buildSubgraphs(ctx context.Context, c cache.Cache, cfg *config.Config, pairs []model.ODPair, pre *preprocess.Result, params preprocess.Params, m *metrics.Metrics) []*subgraph.Subgraph {
	if !cfg.Cache.Enabled {
		results := subgraph.BuildAll(ctx, pairs, pre, params, cfg.Parameters.NumProc)
		subs := make([]*subgraph.Subgraph, len(results))
		for _, r := range results {
			subs[r.Index] = r.Sub
		}
		return subs
	}

	subs := make([]*subgraph.Subgraph, len(pairs))
	for i, pair := range pairs {
		start := time.Now()
		subs[i] = cache.BuildCached(ctx, c, pair, pre, params, cfg.Cache.TTL)
		if m != nil {
			m.SubgraphBuildSeconds.Observe(time.Since(start).Seconds())
		}
	}
	return subs
}

func persistHistory(ctx context.Context, log *slog.Logger, cfg *config.Config, rec model.RunRecord, stationUsages []accounting.StationUsage, enabled bool, inputDir string) {
	if !cfg.Database.Enabled {
		return
	}
	store, err := history.Open(ctx, cfg.Database.DSN)
	if err != nil {
		log.Warn("history store unavailable", "error", err)
		return
	}
	defer store.Close()

	if err := store.Insert(ctx, rec); err != nil {
		log.Warn("failed to persist run record", "error", err)
	}
	if err := store.InsertStationUsage(ctx, rec.RunID, stationUsages); err != nil {
		log.Warn("failed to persist station usage", "error", err)
	}
	if enabled {
		recent, err := store.Recent(ctx, inputDir, 10)
		if err != nil {
			log.Warn("failed to query run history", "error", err)
			return
		}
		fmt.Print(history.FormatTrend(recent))
	}
}

func totalCost(nodes map[int64]model.Node, selected map[int64]bool) float64 {
	total := 0.0
	for id := range selected {
		total += nodes[id].Cost
	}
	return total
}

func coveredDemand(pairs []model.ODPair, covered map[int]bool) float64 {
	total := 0.0
	for i, p := range pairs {
		if covered[i] {
			total += p.Demand
		}
	}
	return total
}

func buildCoverageRows(pairs []model.ODPair, usages []accounting.PairUsage, covered map[int]bool) []csvio.CoverageRow {
	usageByPair := make(map[[2]int64]accounting.PairUsage, len(usages))
	for _, u := range usages {
		usageByPair[[2]int64{u.OriginID, u.DestinationID}] = u
	}

	rows := make([]csvio.CoverageRow, 0, len(pairs))
	for i, p := range pairs {
		row := csvio.CoverageRow{
			OriginID:       p.OriginID,
			DestinationID:  p.DestinationID,
			Demand:         p.Demand,
			DirectDistance: p.DirectDistance,
			DirectTime:     p.DirectTime,
			Feasible:       covered[i],
		}
		if u, ok := usageByPair[[2]int64{p.OriginID, p.DestinationID}]; ok {
			row.Stations = u.Stations
			row.FuelStops = u.FuelStops
			row.RouteDistance = u.RouteDistance
			row.RouteTime = u.RouteTime
		}
		rows = append(rows, row)
	}
	return rows
}

func buildStationRows(nodes map[int64]model.Node, selected map[int64]bool, usages []accounting.StationUsage) []csvio.StationRow {
	usageByStation := make(map[int64]accounting.StationUsage, len(usages))
	for _, u := range usages {
		usageByStation[u.StationID] = u
	}

	rows := make([]csvio.StationRow, 0, len(selected))
	for id := range selected {
		n := nodes[id]
		typ := "CANDIDATE"
		if n.IsPreExisting() {
			typ = "EXISTING"
		}
		row := csvio.StationRow{ID: id, Type: typ}
		if u, ok := usageByStation[id]; ok {
			row.Demand = u.DemandServed
			row.Energy = u.ChargedEnergy
		}
		rows = append(rows, row)
	}
	return rows
}
