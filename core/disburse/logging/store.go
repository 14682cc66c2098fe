package logging

import (
	"context"
	"time"

	"github.com/kilianp07/disburse/core/model"
)

// RunRecord captures the outcome of one cluster within a batch run.
type RunRecord struct {
	Timestamp  time.Time          `json:"timestamp"`
	RunID      string             `json:"run_id"`
	Domain     string             `json:"domain"`
	ClusterID  int                `json:"cluster_id"`
	Solver     string             `json:"solver"`
	Agents     int                `json:"agents"`
	Objectives int                `json:"objectives"`
	Status     string             `json:"status"`
	Error      string             `json:"error,omitempty"`
	Result     *model.SolveResult `json:"result,omitempty"`
}

// RunQuery defines filters for retrieving records. Zero values match all.
type RunQuery struct {
	RunID  string
	Domain string
	Status string
	Start  time.Time
	End    time.Time
}

// Match reports whether r passes the filters.
func (q RunQuery) Match(r RunRecord) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Domain != "" && r.Domain != q.Domain {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return true
}

// RunStore persists RunRecords and supports querying.
type RunStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error             { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                        { return nil }
