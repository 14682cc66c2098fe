package disburse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kilianp07/disburse/core/cluster"
	"github.com/kilianp07/disburse/core/disburse/logging"
	"github.com/kilianp07/disburse/core/events"
	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/core/model"
	"github.com/kilianp07/disburse/core/solver"
	"github.com/kilianp07/disburse/internal/eventbus"
)

// Request is a batch of agents and objectives. Parameters, when set,
// override the configured constraints.
type Request struct {
	Agents     []model.Agent      `json:"users"`
	Objectives []model.Objective  `json:"cases"`
	Parameters *model.Constraints `json:"parameters,omitempty"`
}

// Validate checks coordinates, ids, and parameters.
func (r Request) Validate() error {
	seen := make(map[string]bool, len(r.Agents))
	for _, a := range r.Agents {
		if err := a.Validate(); err != nil {
			return err
		}
		if seen[a.ID] {
			return &model.ValidationError{Field: "users.id", Value: a.ID, Cause: errors.New("duplicate id")}
		}
		seen[a.ID] = true
	}
	seen = make(map[string]bool, len(r.Objectives))
	for _, o := range r.Objectives {
		if err := o.Validate(); err != nil {
			return err
		}
		if seen[o.ID] {
			return &model.ValidationError{Field: "cases.id", Value: o.ID, Cause: errors.New("duplicate id")}
		}
		seen[o.ID] = true
	}
	if r.Parameters != nil {
		return r.Parameters.Validate()
	}
	return nil
}

// Job runs one disbursement batch end to end. It is meant to be executed by
// an asynchronous worker; callers do not consume the returned Report beyond
// persisting or printing it.
type Job struct {
	Domain        string
	Solver        solver.Solver
	Partitioner   cluster.Partitioner
	Constraints   model.Constraints
	MaxObjectives int

	Tracker Tracker
	Log     logger.Logger
	Bus     eventbus.EventBus
	Sink    metrics.MetricsSink
	Store   logging.RunStore
	// Push publishes collected metrics at the end of a batch.
	Push func(ctx context.Context) error

	newRunID func() string
	now      func() time.Time
}

// Run validates the request, partitions it, and solves every cluster. The
// batch is marked completed even when individual clusters fail; only invalid
// input, an oversized batch, or an empty partition mark it as errored.
func (j *Job) Run(ctx context.Context, req Request) (Report, error) {
	log := logger.OrNop(j.Log)
	tracker := j.Tracker
	if tracker == nil {
		tracker = NopTracker{}
	}
	now := j.now
	if now == nil {
		now = time.Now
	}
	newID := j.newRunID
	if newID == nil {
		newID = uuid.NewString
	}
	runID := newID()
	started := now()

	track := func(what string, err error) {
		if err != nil {
			log.Warnf("tracker %s: %v", what, err)
		}
	}
	fail := func(slug string, err error) (Report, error) {
		log.Errorf("run %s: %v", runID, err)
		track("error", tracker.MarkAsError(ctx, slug))
		return Report{}, err
	}

	track("requested", tracker.MarkRequested(ctx))
	if err := req.Validate(); err != nil {
		return fail(SlugInvalidInput, err)
	}
	if j.MaxObjectives > 0 && len(req.Objectives) > j.MaxObjectives {
		return fail(SlugTooManyCases, fmt.Errorf("%w: %d > %d", ErrTooManyObjectives, len(req.Objectives), j.MaxObjectives))
	}
	constraints := j.Constraints
	if req.Parameters != nil {
		constraints = *req.Parameters
	}
	if err := constraints.Validate(); err != nil {
		return fail(SlugInvalidInput, err)
	}

	part, err := j.Partitioner.Partition(req.Agents, req.Objectives)
	if err != nil {
		return fail(SlugInvalidInput, err)
	}
	if len(part.Clusters) == 0 {
		return fail(SlugNoClusters, ErrNoClusters)
	}
	log.Infof("run %s: %d agents, %d objectives in %d clusters (%d without agents, %d without objectives)",
		runID, len(req.Agents), len(req.Objectives), len(part.Clusters), part.NoAgents, part.NoObjectives)

	if j.Bus != nil {
		j.Bus.Publish(events.RunEvent{RunID: runID, Domain: j.Domain, Clusters: len(part.Clusters)})
	}
	orch := &Orchestrator{
		Solver:      j.Solver,
		Constraints: constraints,
		RunID:       runID,
		Domain:      j.Domain,
		Log:         j.Log,
		Bus:         j.Bus,
		Sink:        j.Sink,
		Store:       j.Store,
		Progress: func(done, total int) {
			track("progress", tracker.UpdateProgress(ctx, done, total))
		},
		now: j.now,
	}
	_, outcomes := orch.Run(ctx, part.Clusters)

	rep := Report{
		RunID:      runID,
		Domain:     j.Domain,
		Solver:     string(j.Solver.Kind()),
		Parameters: constraints.Resolve(0, 0),
		StartedAt:  started,
	}
	rep.Aggregate(outcomes)
	rep.FinishedAt = now()
	track("completed", tracker.MarkCompleted(ctx))
	log.Infof("run %s completed: %d solved, %d skipped, %d failed clusters; %d assigned, %d unassigned",
		runID, rep.SolvedClusters, rep.SkippedClusters, rep.FailedClusters, rep.Assignments.Count(), len(rep.Unassigned))

	if rr, ok := j.Sink.(metrics.RunRecorder); ok {
		if err := rr.RecordRun(metrics.RunSummary{
			RunID:      runID,
			Domain:     j.Domain,
			Solver:     rep.Solver,
			Clusters:   rep.Clusters,
			Solved:     rep.SolvedClusters,
			Skipped:    rep.SkippedClusters,
			Failed:     rep.FailedClusters,
			Assigned:   rep.Assignments.Count(),
			Unassigned: len(rep.Unassigned),
			Duration:   rep.FinishedAt.Sub(started),
			Time:       rep.FinishedAt,
		}); err != nil {
			log.Warnf("metrics sink: %v", err)
		}
	}
	if j.Bus != nil {
		j.Bus.Publish(events.RunEvent{RunID: runID, Domain: j.Domain, Clusters: rep.Clusters, Done: true})
	}
	if j.Push != nil {
		if err := j.Push(ctx); err != nil {
			log.Warnf("metrics push: %v", err)
		}
	}
	return rep, nil
}
