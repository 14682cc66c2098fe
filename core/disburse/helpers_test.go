package disburse

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/disburse/core/model"
	"github.com/kilianp07/disburse/core/solver"
	"github.com/stretchr/testify/mock"
)

// flakySolver wraps the greedy solver and fails for clusters containing an
// agent listed in failFor.
type flakySolver struct {
	failFor map[string]bool
	calls   int
}

func (s *flakySolver) Kind() solver.Kind { return solver.KindGreedy }

func (s *flakySolver) Solve(ctx context.Context, agents []model.Agent, objectives []model.Objective, c model.Constraints) (model.SolveResult, error) {
	s.calls++
	for _, a := range agents {
		if s.failFor[a.ID] {
			return model.SolveResult{}, errors.New("matrix api returned 503")
		}
	}
	return solver.GreedySolver{}.Solve(ctx, agents, objectives, c)
}

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) MarkRequested(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockTracker) UpdateProgress(ctx context.Context, current, total int) error {
	return m.Called(current, total).Error(0)
}

func (m *mockTracker) MarkCompleted(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockTracker) MarkAsError(ctx context.Context, slug string) error {
	return m.Called(slug).Error(0)
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(10 * time.Millisecond)
		return t
	}
}

func clusters() []model.Cluster {
	return []model.Cluster{
		{ID: 0, Agents: []model.Agent{{ID: "nyc", Lat: 40.76, Lon: -73.98}}, Objectives: []model.Objective{{ID: "nh", Lat: 43.19, Lon: -71.57}}},
		{ID: 1, Objectives: []model.Objective{{ID: "lonely", Lat: 10, Lon: 10}}},
		{ID: 2, Agents: []model.Agent{{ID: "socal", Lat: 33.05, Lon: -117.62}}, Objectives: []model.Objective{{ID: "az", Lat: 33.87, Lon: -110.48}}},
		{ID: 3, Agents: []model.Agent{{ID: "idle", Lat: 0, Lon: 0}}},
	}
}
