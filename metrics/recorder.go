package metrics

import (
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/katalvlaran/prodflow/editor"
	"github.com/katalvlaran/prodflow/solver"
)

const namespace = "prodflow"

// Edit outcomes used as the result label.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)

// Recorder holds the collectors and the registry they are registered in.
type Recorder struct {
	reg *prometheus.Registry

	solves   *prometheus.CounterVec
	passes   prometheus.Histogram
	updates  prometheus.Counter
	duration prometheus.Histogram
	edits    *prometheus.CounterVec
	nodes    prometheus.Gauge
	edges    prometheus.Gauge
}

// New returns a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "solver",
				Name:      "solves_total",
				Help:      "Number of committed solves by triggering operation, mode and convergence.",
			},
			[]string{"op", "mode", "converged"},
		),
		passes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "solver",
				Name:      "passes",
				Help:      "Relaxation passes per full-mode solve.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		updates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "solver",
				Name:      "updates_total",
				Help:      "Total number of rates and machine counts rewritten by the solver.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "solver",
				Name:      "duration_seconds",
				Help:      "Time taken by one solve.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "editor",
				Name:      "edits_total",
				Help:      "Number of editor operations by outcome.",
			},
			[]string{"op", "result"},
		),
		nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "graph",
				Name:      "nodes",
				Help:      "Node count of the last committed solve.",
			},
		),
		edges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "graph",
				Name:      "edges",
				Help:      "Edge count of the last committed solve.",
			},
		),
	}
	r.reg.MustRegister(r.solves, r.passes, r.updates, r.duration, r.edits, r.nodes, r.edges)

	return r
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveSolve records one committed solve. Matches editor.WithOnSolve.
func (r *Recorder) ObserveSolve(op editor.Op, res *solver.Result, elapsed time.Duration) {
	if res == nil {
		return
	}
	r.solves.WithLabelValues(string(op), res.Mode.String(), strconv.FormatBool(res.Converged)).Inc()
	if res.Mode == solver.ModeFull {
		r.passes.Observe(float64(res.Passes))
	}
	r.updates.Add(float64(res.Updates))
	r.duration.Observe(elapsed.Seconds())
	if res.Graph != nil {
		r.nodes.Set(float64(res.Graph.NodeCount()))
		r.edges.Set(float64(res.Graph.EdgeCount()))
	}
}

// ObserveEdit records one operation outcome. Matches editor.WithOnEdit.
func (r *Recorder) ObserveEdit(op editor.Op, err error) {
	result := ResultOK
	if err != nil {
		result = ResultRejected
	}
	r.edits.WithLabelValues(string(op), result).Inc()
}

// EditorOptions returns the session options that feed this Recorder.
func (r *Recorder) EditorOptions() []editor.Option {
	return []editor.Option{
		editor.WithOnSolve(r.ObserveSolve),
		editor.WithOnEdit(r.ObserveEdit),
	}
}

// WriteText writes every collected family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}
