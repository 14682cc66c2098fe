package disburse

import (
	"time"

	"github.com/kilianp07/disburse/core/model"
)

// Report is the aggregated outcome of a batch. Objectives of skipped or
// failed clusters are listed as unassigned so every input objective is
// accounted for exactly once.
type Report struct {
	RunID           string            `json:"run_id"`
	Domain          string            `json:"domain"`
	Solver          string            `json:"solver"`
	Parameters      model.Constraints `json:"parameters"`
	Assignments     model.Assignment  `json:"assignments"`
	Unassigned      []model.Objective `json:"unassigned"`
	Clusters        int               `json:"clusters"`
	SolvedClusters  int               `json:"solved_clusters"`
	SkippedClusters int               `json:"skipped_clusters"`
	FailedClusters  int               `json:"failed_clusters"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at"`
}

// Aggregate merges cluster outcomes into r.
func (r *Report) Aggregate(outcomes []ClusterOutcome) {
	if r.Assignments == nil {
		r.Assignments = model.Assignment{}
	}
	if r.Unassigned == nil {
		r.Unassigned = []model.Objective{}
	}
	r.Clusters += len(outcomes)
	for _, out := range outcomes {
		switch out.Status {
		case StatusSolved:
			r.SolvedClusters++
			for agent, ids := range out.Result.Assigned {
				r.Assignments[agent] = append(r.Assignments[agent], ids...)
			}
			r.Unassigned = append(r.Unassigned, out.Result.Unassigned...)
		case StatusSkipped:
			r.SkippedClusters++
			r.Unassigned = append(r.Unassigned, model.Unassigned(out.Cluster.Objectives)...)
		default:
			r.FailedClusters++
			r.Unassigned = append(r.Unassigned, model.Unassigned(out.Cluster.Objectives)...)
		}
	}
}

// Total returns assigned plus unassigned objectives.
func (r Report) Total() int { return r.Assignments.Count() + len(r.Unassigned) }
