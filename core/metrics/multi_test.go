package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordSolve([]SolveEvent) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordRun(RunSummary) error {
	r.count++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})
	if err := m.RecordSolve(nil); err != nil {
		t.Fatalf("record solve: %v", err)
	}
	if err := m.RecordRun(RunSummary{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
}

func TestMultiSink_FirstError(t *testing.T) {
	bad := &recordSink{err: errors.New("down")}
	after := &recordSink{}
	if err := NewMultiSink(bad, after).RecordSolve(nil); err == nil {
		t.Fatal("expected error")
	}
	if after.count != 0 {
		t.Fatalf("sink after failure should not be called")
	}
}
