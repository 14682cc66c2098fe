package disburse

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	clustersTotal   *prometheus.CounterVec
	solveSeconds    *prometheus.HistogramVec
	objectivesTotal *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, *prometheus.CounterVec) {
	clusters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disburse_clusters_total",
			Help: "Clusters processed by solver and status",
		},
		[]string{"solver", "status"},
	)
	seconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disburse_cluster_solve_seconds",
			Help:    "Time spent solving one cluster",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 10),
		},
		[]string{"solver"},
	)
	objectives := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disburse_objectives_total",
			Help: "Objectives by outcome",
		},
		[]string{"outcome"},
	)
	return clusters, seconds, objectives
}

func init() {
	clustersTotal, solveSeconds, objectivesTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers disbursement metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(clustersTotal, solveSeconds, objectivesTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	clustersTotal, solveSeconds, objectivesTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
