package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/kilianp07/disburse/core/geo"
	"github.com/kilianp07/disburse/core/model"
)

// Allocate assigns each objective, in input order, to the nearest agent that
// still has capacity. Only the single nearest live agent is considered: if it
// is farther than maxDistanceKm the objective stays unassigned even when a
// farther agent would be in range. Agents leave the live set once they hold
// maxAssignable objectives.
func Allocate(agents []model.Agent, objectives []model.Objective, maxDistanceKm float64, maxAssignable int) (model.Assignment, error) {
	choice, err := allocate(agents, objectives, maxDistanceKm, maxAssignable)
	if err != nil {
		return nil, err
	}
	out := model.Assignment{}
	for j, i := range choice {
		if i < 0 {
			continue
		}
		out[agents[i].ID] = append(out[agents[i].ID], objectives[j].ID)
	}
	return out, nil
}

func allocate(agents []model.Agent, objectives []model.Objective, maxDistanceKm float64, maxAssignable int) ([]int, error) {
	if maxDistanceKm < 0 {
		return nil, fmt.Errorf("max distance %v: %w", maxDistanceKm, ErrNegativeParameter)
	}
	if maxAssignable < 0 {
		return nil, fmt.Errorf("max assignable %d: %w", maxAssignable, ErrNegativeParameter)
	}
	choice := make([]int, len(objectives))
	for j := range choice {
		choice[j] = -1
	}
	live := make([]int, 0, len(agents))
	if maxAssignable > 0 {
		for i := range agents {
			live = append(live, i)
		}
	}
	counts := make([]int, len(agents))
	for j, o := range objectives {
		if len(live) == 0 {
			break
		}
		p := o.Point()
		best, bestDist := -1, math.Inf(1)
		for k, i := range live {
			if d := geo.HaversineKm(agents[i].Point(), p); d < bestDist {
				best, bestDist = k, d
			}
		}
		if bestDist > maxDistanceKm {
			continue
		}
		i := live[best]
		choice[j] = i
		counts[i]++
		if counts[i] >= maxAssignable {
			live = append(live[:best], live[best+1:]...)
		}
	}
	return choice, nil
}

// GreedySolver wraps Allocate behind the Solver interface. It uses radial
// distances only, so travel time limits and min_per_agent are not enforced.
type GreedySolver struct{}

func (GreedySolver) Kind() Kind { return KindGreedy }

func (GreedySolver) Solve(_ context.Context, agents []model.Agent, objectives []model.Objective, c model.Constraints) (model.SolveResult, error) {
	params := c.Resolve(len(agents), len(objectives))
	if len(agents) == 0 || len(objectives) == 0 {
		return model.EmptyResult(objectives, params), nil
	}
	maxDist := math.Inf(1)
	if d, ok := params.DistanceLimit(); ok {
		maxDist = d
	}
	choice, err := allocate(agents, objectives, maxDist, params.MaxPerAgent)
	if err != nil {
		return model.SolveResult{}, err
	}
	return model.BuildResult(agents, objectives, choice, params), nil
}
