package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// LPSolver assigns every objective to exactly one agent while minimising the
// total cost, with per-agent lower and upper bounds.
//
// Distance and travel time caps are not part of the program. They are applied
// to the optimal assignment afterwards and offending pairs are moved to the
// unassigned list, so the result is not the optimum of a capped formulation.
type LPSolver struct {
	Cost CostSource
	// Fallback is used when the simplex fails for reasons other than
	// infeasibility. Nil propagates the error.
	Fallback Solver
	Log      logger.Logger
}

func (s LPSolver) Kind() Kind { return KindLP }

func (s LPSolver) Solve(ctx context.Context, agents []model.Agent, objectives []model.Objective, c model.Constraints) (model.SolveResult, error) {
	log := logger.OrNop(s.Log)
	params := c.Resolve(len(agents), len(objectives))
	n, m := len(agents), len(objectives)
	if n == 0 || m == 0 {
		return model.EmptyResult(objectives, params), nil
	}
	if params.MaxPerAgent*n < m || params.MinPerAgent*n > m {
		log.Infof("lp: infeasible bounds min=%d max=%d for %d agents, %d objectives", params.MinPerAgent, params.MaxPerAgent, n, m)
		return model.EmptyResult(objectives, params), nil
	}
	cost := s.Cost
	if cost == nil {
		cost = RadialCost{}
	}
	_, timed := params.TravelTimeLimit()
	costs, err := cost.Costs(ctx, model.AgentPoints(agents), model.ObjectivePoints(objectives), params.TravelMode, timed)
	if err != nil {
		return model.SolveResult{}, fmt.Errorf("%s cost matrix: %w", cost.Name(), err)
	}
	if err := costs.CheckShape(n, m); err != nil {
		return model.SolveResult{}, err
	}

	choice, err := lpSolve(costs.DistanceKm, params.MinPerAgent, params.MaxPerAgent)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		log.Infof("lp: no feasible assignment for %d agents, %d objectives", n, m)
		return model.EmptyResult(objectives, params), nil
	case err != nil && s.Fallback != nil:
		log.Warnf("lp: simplex failed, falling back to %s: %v", s.Fallback.Kind(), err)
		return s.Fallback.Solve(ctx, agents, objectives, c)
	case err != nil:
		return model.SolveResult{}, fmt.Errorf("lp: %w", err)
	}

	screened := 0
	maxDist, capDist := params.DistanceLimit()
	maxTime, capTime := params.TravelTimeLimit()
	for j, i := range choice {
		if i < 0 {
			continue
		}
		if capDist && costs.DistanceKm[i][j] > maxDist {
			choice[j] = -1
			screened++
			continue
		}
		if capTime && costs.HasDurations() && costs.DurationS[i][j] > maxTime {
			choice[j] = -1
			screened++
		}
	}
	if screened > 0 {
		log.Debugw("lp: assignments screened by caps", map[string]any{"screened": screened, "objectives": m})
	}
	return model.BuildResult(agents, objectives, choice, params), nil
}

// solveAssignment solves the transportation relaxation of the assignment
// problem and returns, per objective, the index of the chosen agent.
//
// Standard form variables are x[i*m+j], then one slack per agent for the
// upper bound and, when minPer > 0, one surplus per agent for the lower
// bound. The constraint matrix is totally unimodular so the simplex vertex
// is integral.
func solveAssignment(cost [][]float64, minPer, maxPer int) ([]int, error) {
	n := len(cost)
	m := len(cost[0])
	if n == 1 {
		if m > maxPer || m < minPer {
			return nil, lp.ErrInfeasible
		}
		return make([]int, m), nil
	}

	nx := n * m
	vars := nx + n
	rows := m + n
	if minPer > 0 {
		vars += n
		rows += n
	}
	c := make([]float64, vars)
	A := mat.NewDense(rows, vars, nil)
	b := make([]float64, rows)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			c[i*m+j] = cost[i][j]
			A.Set(j, i*m+j, 1)
			A.Set(m+i, i*m+j, 1)
			if minPer > 0 {
				A.Set(m+n+i, i*m+j, 1)
			}
		}
		A.Set(m+i, nx+i, 1)
		b[m+i] = float64(maxPer)
		if minPer > 0 {
			A.Set(m+n+i, nx+n+i, -1)
			b[m+n+i] = float64(minPer)
		}
	}
	for j := 0; j < m; j++ {
		b[j] = 1
	}

	_, x, err := lp.Simplex(c, A, b, 1e-7, nil)
	if err != nil {
		return nil, err
	}
	choice := make([]int, m)
	for j := 0; j < m; j++ {
		best, bestVal := -1, 0.0
		for i := 0; i < n; i++ {
			if v := x[i*m+j]; v > bestVal {
				best, bestVal = i, v
			}
		}
		choice[j] = best
	}
	return choice, nil
}

// lpSolve points to the function used to solve the assignment program. It can
// be overridden in tests to simulate solver failures.
var lpSolve = solveAssignment
