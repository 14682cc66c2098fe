package metrics

import "time"

// SolveEvent describes one processed cluster.
type SolveEvent struct {
	RunID      string
	Domain     string
	ClusterID  int
	Solver     string
	Status     string
	Agents     int
	Objectives int
	Assigned   int
	Unassigned int
	Duration   time.Duration
	Err        string
	Time       time.Time
}

// MetricsSink records solve events for observability purposes.
type MetricsSink interface {
	RecordSolve(events []SolveEvent) error
}

// RunSummary aggregates a whole batch.
type RunSummary struct {
	RunID      string
	Domain     string
	Solver     string
	Clusters   int
	Solved     int
	Skipped    int
	Failed     int
	Assigned   int
	Unassigned int
	Duration   time.Duration
	Time       time.Time
}

// RunRecorder is implemented by sinks able to record batch summaries.
type RunRecorder interface {
	RecordRun(s RunSummary) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve([]SolveEvent) error { return nil }
func (NopSink) RecordRun(RunSummary) error     { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the events to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(events []SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(events); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards the summary to sinks implementing RunRecorder.
func (m *MultiSink) RecordRun(sum RunSummary) error {
	for _, s := range m.Sinks {
		if rr, ok := s.(RunRecorder); ok {
			if err := rr.RecordRun(sum); err != nil {
				return err
			}
		}
	}
	return nil
}
