package disburse

import (
	"context"
	"time"

	"github.com/kilianp07/disburse/core/disburse/logging"
	"github.com/kilianp07/disburse/core/events"
	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/core/model"
	"github.com/kilianp07/disburse/core/solver"
	"github.com/kilianp07/disburse/internal/eventbus"
)

// Cluster outcome statuses.
const (
	StatusSolved  = "solved"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// ClusterOutcome records what happened to one cluster.
type ClusterOutcome struct {
	Cluster  model.Cluster
	Status   string
	Reason   string
	Result   *model.SolveResult
	Err      error
	Duration time.Duration
}

// Orchestrator solves clusters one after another with a single Solver.
type Orchestrator struct {
	Solver      solver.Solver
	Constraints model.Constraints
	RunID       string
	Domain      string

	Log   logger.Logger
	Bus   eventbus.EventBus
	Sink  metrics.MetricsSink
	Store logging.RunStore
	// Progress is called after each cluster with the number processed so far.
	Progress func(done, total int)

	now func() time.Time
}

// Run invokes the solver on every cluster that has both agents and
// objectives. Clusters missing either are skipped; a failing cluster is
// logged and the batch continues. The returned results cover the solved
// clusters only; outcomes cover all of them in input order.
func (o *Orchestrator) Run(ctx context.Context, clusters []model.Cluster) ([]model.SolveResult, []ClusterOutcome) {
	log := logger.OrNop(o.Log)
	now := o.now
	if now == nil {
		now = time.Now
	}
	kind := string(o.Solver.Kind())
	results := make([]model.SolveResult, 0, len(clusters))
	outcomes := make([]ClusterOutcome, 0, len(clusters))
	for i, c := range clusters {
		out := ClusterOutcome{Cluster: c}
		switch {
		case len(c.Agents) == 0:
			out.Status, out.Reason = StatusSkipped, "no agents"
		case len(c.Objectives) == 0:
			out.Status, out.Reason = StatusSkipped, "no objectives"
		default:
			start := now()
			res, err := o.Solver.Solve(ctx, c.Agents, c.Objectives, o.Constraints)
			out.Duration = now().Sub(start)
			if err != nil {
				out.Status, out.Err = StatusFailed, err
			} else {
				out.Status, out.Result = StatusSolved, &res
				results = append(results, res)
			}
		}

		switch out.Status {
		case StatusSkipped:
			log.Infof("cluster %d skipped: %s", c.ID, out.Reason)
		case StatusFailed:
			log.Errorf("cluster %d: %s solve failed: %v", c.ID, kind, out.Err)
		default:
			log.Debugw("cluster solved", map[string]any{
				"cluster":    c.ID,
				"solver":     kind,
				"assigned":   out.Result.Assigned.Count(),
				"unassigned": len(out.Result.Unassigned),
				"duration":   out.Duration.String(),
			})
		}
		o.record(ctx, out, kind, now())
		outcomes = append(outcomes, out)
		if o.Progress != nil {
			o.Progress(i+1, len(clusters))
		}
	}
	return results, outcomes
}

func (o *Orchestrator) record(ctx context.Context, out ClusterOutcome, kind string, at time.Time) {
	log := logger.OrNop(o.Log)
	assigned, unassigned := 0, len(out.Cluster.Objectives)
	if out.Result != nil {
		assigned, unassigned = out.Result.Assigned.Count(), len(out.Result.Unassigned)
	}
	errText := out.Reason
	if out.Err != nil {
		errText = out.Err.Error()
	}

	clustersTotal.WithLabelValues(kind, out.Status).Inc()
	if out.Status != StatusSkipped {
		solveSeconds.WithLabelValues(kind).Observe(out.Duration.Seconds())
	}
	objectivesTotal.WithLabelValues("assigned").Add(float64(assigned))
	objectivesTotal.WithLabelValues("unassigned").Add(float64(unassigned))

	if o.Sink != nil {
		ev := metrics.SolveEvent{
			RunID:      o.RunID,
			Domain:     o.Domain,
			ClusterID:  out.Cluster.ID,
			Solver:     kind,
			Status:     out.Status,
			Agents:     len(out.Cluster.Agents),
			Objectives: len(out.Cluster.Objectives),
			Assigned:   assigned,
			Unassigned: unassigned,
			Duration:   out.Duration,
			Err:        errText,
			Time:       at,
		}
		if err := o.Sink.RecordSolve([]metrics.SolveEvent{ev}); err != nil {
			log.Warnf("metrics sink: %v", err)
		}
	}
	if o.Store != nil {
		rec := logging.RunRecord{
			Timestamp:  at,
			RunID:      o.RunID,
			Domain:     o.Domain,
			ClusterID:  out.Cluster.ID,
			Solver:     kind,
			Agents:     len(out.Cluster.Agents),
			Objectives: len(out.Cluster.Objectives),
			Status:     out.Status,
			Error:      errText,
			Result:     out.Result,
		}
		if err := o.Store.Append(ctx, rec); err != nil {
			log.Warnf("run log append: %v", err)
		}
	}
	if o.Bus != nil {
		o.Bus.Publish(events.ClusterEvent{
			RunID:      o.RunID,
			Domain:     o.Domain,
			ClusterID:  out.Cluster.ID,
			Solver:     kind,
			Status:     out.Status,
			Reason:     out.Reason,
			Assigned:   assigned,
			Unassigned: unassigned,
			Duration:   out.Duration,
			Err:        out.Err,
		})
	}
}
