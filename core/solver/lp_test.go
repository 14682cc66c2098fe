package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/kilianp07/disburse/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

func TestLPSolver_Example(t *testing.T) {
	s := LPSolver{Cost: RadialCost{}}
	res, err := s.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{})
	require.NoError(t, err)
	assertPartition(t, res, 2)
	assert.Equal(t, []string{"nh"}, res.Assigned["nyc"])
	assert.Equal(t, []string{"az"}, res.Assigned["socal"])
}

func TestLPSolver_DistanceCapScreensAfterSolve(t *testing.T) {
	s := LPSolver{Cost: RadialCost{}}
	res, err := s.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{MaxDistanceKm: ptr(1.0)})
	require.NoError(t, err)
	assert.Empty(t, res.Assigned)
	assert.Len(t, res.Unassigned, 2)
}

func TestLPSolver_StructurallyInfeasible(t *testing.T) {
	objs := append(exampleObjectives(), model.Objective{ID: "extra", Lat: 40, Lon: -74})
	res, err := LPSolver{}.Solve(context.Background(), exampleAgents(), objs, model.Constraints{MaxPerAgent: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Assigned)
	assert.Len(t, res.Unassigned, 3)
}

func TestLPSolver_EmptyInputs(t *testing.T) {
	res, err := LPSolver{}.Solve(context.Background(), exampleAgents()[:1], nil, model.Constraints{})
	require.NoError(t, err)
	assert.Empty(t, res.Assigned)
	assert.Empty(t, res.Unassigned)

	res, err = LPSolver{}.Solve(context.Background(), nil, exampleObjectives(), model.Constraints{})
	require.NoError(t, err)
	assert.Len(t, res.Unassigned, 2)
}

func TestLPSolver_MinPerAgent(t *testing.T) {
	agents := []model.Agent{
		{ID: "a", Lat: 0, Lon: 0},
		{ID: "b", Lat: 0, Lon: 10},
		{ID: "c", Lat: 0, Lon: 20},
	}
	var objs []model.Objective
	for k, id := range []string{"o1", "o2", "o3", "o4", "o5", "o6"} {
		objs = append(objs, model.Objective{ID: id, Lat: 0.01 * float64(k), Lon: 0})
	}
	res, err := LPSolver{}.Solve(context.Background(), agents, objs, model.Constraints{MinPerAgent: 1, MaxPerAgent: 4})
	require.NoError(t, err)
	assertPartition(t, res, 6)
	assert.Len(t, res.Assigned["a"], 4)
	assert.Len(t, res.Assigned["b"], 1)
	assert.Len(t, res.Assigned["c"], 1)
}

func TestLPSolver_SingleAgent(t *testing.T) {
	res, err := LPSolver{}.Solve(context.Background(), exampleAgents()[:1], exampleObjectives(), model.Constraints{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"nh", "az"}, res.Assigned["nyc"])
}

func TestLPSolver_InfeasibleFromSimplex(t *testing.T) {
	old := lpSolve
	lpSolve = func([][]float64, int, int) ([]int, error) { return nil, lp.ErrInfeasible }
	defer func() { lpSolve = old }()

	res, err := LPSolver{}.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{})
	require.NoError(t, err)
	assert.Len(t, res.Unassigned, 2)
}

func TestLPSolver_SolverErrorFallback(t *testing.T) {
	old := lpSolve
	lpSolve = func([][]float64, int, int) ([]int, error) { return nil, errors.New("fail") }
	defer func() { lpSolve = old }()

	_, err := LPSolver{}.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{})
	assert.Error(t, err)

	res, err := LPSolver{Fallback: GreedySolver{}}.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{})
	require.NoError(t, err)
	assert.Equal(t, []string{"nh"}, res.Assigned["nyc"])
}

func TestLPSolver_RoadNetworkTravelTimeScreen(t *testing.T) {
	// 0.01 km/s puts both trips well above one hour.
	f := &fakeFetcher{kmPerSecond: 0.01}
	s := LPSolver{Cost: RoadNetworkCost{Fetcher: f}}
	res, err := s.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{MaxTravelTimeS: ptr(3600)})
	require.NoError(t, err)
	assert.Empty(t, res.Assigned)
	assert.Len(t, res.Unassigned, 2)
	assert.Equal(t, [][2]int{{2, 2}}, f.calls)
}

func TestLPSolver_FetchErrorPropagates(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	_, err := LPSolver{Cost: RoadNetworkCost{Fetcher: f}}.Solve(context.Background(), exampleAgents(), exampleObjectives(), model.Constraints{})
	assert.ErrorContains(t, err, "boom")
}
