// Package metrics implements the optional Prometheus endpoint of §4.17:
// counters and histograms over branch-and-bound progress, separation cuts,
// subgraph construction, and overall solve time.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chalet"

// Metrics is the process-wide metrics container, created once per run.
// The CLI observes SolveSeconds on every run and SubgraphBuildSeconds only
// when the cache is enabled. Nothing updates NodesExplored, CutsEmitted,
// PrimalHeuristicRuns, PrimalHeuristicHits or IncumbentObjective; they are
// exported but stay at zero.
type Metrics struct {
	NodesExplored        prometheus.Counter
	CutsEmitted          *prometheus.CounterVec // labeled by kind: integer, fractional, time
	PrimalHeuristicRuns  prometheus.Counter
	PrimalHeuristicHits  prometheus.Counter
	SubgraphBuildSeconds prometheus.Histogram
	SolveSeconds         prometheus.Histogram
	IncumbentObjective   prometheus.Gauge
}

// New registers a fresh Metrics set against a dedicated registry so
// repeated runs within the same process (tests, future long-lived daemons)
// never hit Prometheus's duplicate-registration panic.
func New() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		NodesExplored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bnb_nodes_explored_total",
			Help: "Total branch-and-bound nodes explored",
		}),
		CutsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "separation_cuts_total",
			Help: "Total separation cuts emitted, by kind",
		}, []string{"kind"}),
		PrimalHeuristicRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "primal_heuristic_runs_total",
			Help: "Total primal heuristic invocations",
		}),
		PrimalHeuristicHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "primal_heuristic_improvements_total",
			Help: "Primal heuristic invocations that improved the incumbent",
		}),
		SubgraphBuildSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "subgraph_build_seconds",
			Help:    "Per-pair subgraph construction latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		SolveSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "solve_seconds",
			Help:    "Overall branch-and-cut wall time",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300, 900, 3600},
		}),
		IncumbentObjective: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "incumbent_objective",
			Help: "Objective value of the current incumbent solution",
		}),
	}
	return m, reg
}

// Server wraps a minimal /metrics endpoint, started only when -metrics-addr
// is set.
type Server struct {
	http *http.Server
}

// NewServer builds a Server bound to addr, serving reg via promhttp.
func NewServer(addr string, reg *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &Server{http: &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}}
}

// Start runs the HTTP server until ctx is canceled, then shuts it down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
