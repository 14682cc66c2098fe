package metrics

import (
	"errors"

	coremetrics "github.com/kilianp07/disburse/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records cluster solve events and batch summaries in Prometheus
// metrics.
type PromSink struct {
	events     *prometheus.CounterVec
	objectives *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	lastRun    *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already present on reg are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disburse_solve_events_total",
			Help: "Processed clusters by domain, solver and status",
		}, []string{"domain", "solver", "status"}),
		objectives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disburse_solve_objectives_total",
			Help: "Objectives seen by solvers, split by outcome",
		}, []string{"domain", "solver", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "disburse_solve_latency_seconds",
			Help:    "Wall time spent solving one cluster",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"domain", "solver"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disburse_last_run_objectives",
			Help: "Objectives of the last completed batch, split by outcome",
		}, []string{"domain", "outcome"}),
	}
	var err error
	if s.events, err = register(reg, s.events); err != nil {
		return nil, err
	}
	if s.objectives, err = register(reg, s.objectives); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.lastRun, err = register(reg, s.lastRun); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates counters for each processed cluster.
func (s *PromSink) RecordSolve(events []coremetrics.SolveEvent) error {
	for _, e := range events {
		s.events.WithLabelValues(e.Domain, e.Solver, e.Status).Inc()
		s.objectives.WithLabelValues(e.Domain, e.Solver, "assigned").Add(float64(e.Assigned))
		s.objectives.WithLabelValues(e.Domain, e.Solver, "unassigned").Add(float64(e.Unassigned))
		if e.Status != "skipped" {
			s.latency.WithLabelValues(e.Domain, e.Solver).Observe(e.Duration.Seconds())
		}
	}
	return nil
}

// RecordRun sets the last-run gauges.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	s.lastRun.WithLabelValues(sum.Domain, "assigned").Set(float64(sum.Assigned))
	s.lastRun.WithLabelValues(sum.Domain, "unassigned").Set(float64(sum.Unassigned))
	return nil
}
