package disburse

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kilianp07/disburse/core/disburse/logging"
	"github.com/kilianp07/disburse/core/events"
	"github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/internal/eventbus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events []metrics.SolveEvent
	runs   []metrics.RunSummary
}

func (c *captureSink) RecordSolve(ev []metrics.SolveEvent) error {
	c.events = append(c.events, ev...)
	return nil
}

func (c *captureSink) RecordRun(s metrics.RunSummary) error {
	c.runs = append(c.runs, s)
	return nil
}

func TestOrchestrator_SkipsAndContinues(t *testing.T) {
	reg := prometheus.NewRegistry()
	ResetMetrics(reg)

	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	bus := eventbus.New()
	sub := bus.Subscribe()
	sink := &captureSink{}
	s := &flakySolver{failFor: map[string]bool{"nyc": true}}

	var progress [][2]int
	o := &Orchestrator{
		Solver: s,
		RunID:  "run-1",
		Domain: "health",
		Bus:    bus,
		Sink:   sink,
		Store:  store,
		Progress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
		now: fixedClock(),
	}
	results, outcomes := o.Run(context.Background(), clusters())

	require.Len(t, results, 1)
	assert.Equal(t, []string{"az"}, results[0].Assigned["socal"])
	assert.Equal(t, 2, s.calls)

	require.Len(t, outcomes, 4)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.ErrorContains(t, outcomes[0].Err, "503")
	assert.Equal(t, StatusSkipped, outcomes[1].Status)
	assert.Equal(t, "no agents", outcomes[1].Reason)
	assert.Equal(t, StatusSolved, outcomes[2].Status)
	assert.Equal(t, StatusSkipped, outcomes[3].Status)
	assert.Equal(t, "no objectives", outcomes[3].Reason)

	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, progress)

	assert.Equal(t, 1.0, testutil.ToFloat64(clustersTotal.WithLabelValues("greedy", StatusSolved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(clustersTotal.WithLabelValues("greedy", StatusFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(clustersTotal.WithLabelValues("greedy", StatusSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(objectivesTotal.WithLabelValues("assigned")))
	assert.Equal(t, 2.0, testutil.ToFloat64(objectivesTotal.WithLabelValues("unassigned")))

	require.Len(t, sink.events, 4)
	assert.Equal(t, "run-1", sink.events[0].RunID)
	assert.Equal(t, StatusFailed, sink.events[0].Status)

	recs, err := store.Query(context.Background(), logging.RunQuery{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "no agents", recs[1].Error)
	require.NotNil(t, recs[2].Result)

	got := 0
	for len(sub) > 0 {
		ev := <-sub
		_, ok := ev.(events.ClusterEvent)
		assert.True(t, ok)
		got++
	}
	assert.Equal(t, 4, got)
}

func TestOrchestrator_Empty(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	o := &Orchestrator{Solver: &flakySolver{}}
	results, outcomes := o.Run(context.Background(), nil)
	assert.Empty(t, results)
	assert.Empty(t, outcomes)
}
