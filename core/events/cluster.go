package events

import "time"

// ClusterEvent is published after each cluster is processed. Status is
// "solved", "skipped", or "failed".
type ClusterEvent struct {
	RunID      string
	Domain     string
	ClusterID  int
	Solver     string
	Status     string
	Reason     string
	Assigned   int
	Unassigned int
	Duration   time.Duration
	Err        error
}

// RunEvent marks the start (Done false) and end of a batch.
type RunEvent struct {
	RunID    string
	Domain   string
	Clusters int
	Done     bool
}
