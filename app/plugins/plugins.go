// Package plugins links the built-in metrics sinks and progress trackers into
// the binary and lists what is available.
package plugins

import (
	"github.com/kilianp07/disburse/core/disburse"
	"github.com/kilianp07/disburse/core/disburse/logging"
	coremetrics "github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/core/solver"

	// Registration side effects.
	_ "github.com/kilianp07/disburse/infra/metrics"
	_ "github.com/kilianp07/disburse/infra/tracker"
)

// Catalog maps each pluggable concern to the names accepted in configuration.
func Catalog() map[string][]string {
	return map[string][]string{
		"solver":      {string(solver.KindGreedy), string(solver.KindLP), string(solver.KindVRP)},
		"cost":        {solver.CostRadial, solver.CostRoadNetwork},
		"vrp_backend": {"insertion", "remote"},
		"metrics":     coremetrics.SinkTypes(),
		"tracker":     disburse.TrackerTypes(),
		"run_log":     logging.Backends(),
	}
}
