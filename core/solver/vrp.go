package solver

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/model"
)

// RouteOptimizer produces an ordered visit list per agent. Agents with no
// stops may be omitted.
type RouteOptimizer interface {
	Routes(ctx context.Context, agents []model.Agent, objectives []model.Objective, params model.Constraints) (model.Assignment, error)
}

// VRPSolver routes objectives with a RouteOptimizer. When distance or travel
// time caps are set, routed stops farther than the cap from their agent are
// moved to the unassigned list.
type VRPSolver struct {
	Router RouteOptimizer
	// Cost screens routed stops against caps. Nil uses RadialCost.
	Cost CostSource
	Log  logger.Logger
}

func (s VRPSolver) Kind() Kind { return KindVRP }

func (s VRPSolver) Solve(ctx context.Context, agents []model.Agent, objectives []model.Objective, c model.Constraints) (model.SolveResult, error) {
	params := c.Resolve(len(agents), len(objectives))
	if len(agents) == 0 || len(objectives) == 0 {
		return model.EmptyResult(objectives, params), nil
	}
	if s.Router == nil {
		return model.SolveResult{}, fmt.Errorf("vrp: no route optimizer configured")
	}
	routes, err := s.Router.Routes(ctx, agents, objectives, params)
	if err != nil {
		return model.SolveResult{}, fmt.Errorf("vrp: %w", err)
	}

	agentIdx := make(map[string]int, len(agents))
	for i, a := range agents {
		agentIdx[a.ID] = i
	}
	objIdx := make(map[string]int, len(objectives))
	for j, o := range objectives {
		objIdx[o.ID] = j
	}
	seen := make([]bool, len(objectives))
	for agentID, stops := range routes {
		if _, ok := agentIdx[agentID]; !ok {
			return model.SolveResult{}, fmt.Errorf("vrp: route for unknown agent %q", agentID)
		}
		for _, id := range stops {
			j, ok := objIdx[id]
			if !ok {
				return model.SolveResult{}, fmt.Errorf("vrp: unknown objective %q in route of %q", id, agentID)
			}
			if seen[j] {
				return model.SolveResult{}, fmt.Errorf("vrp: objective %q routed twice", id)
			}
			seen[j] = true
		}
	}

	drop, err := s.screen(ctx, agents, objectives, params, routes, agentIdx, objIdx)
	if err != nil {
		return model.SolveResult{}, err
	}
	res := model.SolveResult{Assigned: model.Assignment{}, Unassigned: []model.Objective{}, Parameters: params}
	for agentID, stops := range routes {
		for _, id := range stops {
			if drop[objIdx[id]] {
				continue
			}
			res.Assigned[agentID] = append(res.Assigned[agentID], id)
		}
	}
	for j, o := range objectives {
		if !seen[j] || drop[j] {
			o.Assigned = false
			res.Unassigned = append(res.Unassigned, o)
		}
	}
	return res, nil
}

func (s VRPSolver) screen(ctx context.Context, agents []model.Agent, objectives []model.Objective, params model.Constraints, routes model.Assignment, agentIdx, objIdx map[string]int) ([]bool, error) {
	drop := make([]bool, len(objectives))
	maxDist, capDist := params.DistanceLimit()
	maxTime, capTime := params.TravelTimeLimit()
	if !capDist && !capTime {
		return drop, nil
	}
	cost := s.Cost
	if cost == nil {
		cost = RadialCost{}
	}
	costs, err := cost.Costs(ctx, model.AgentPoints(agents), model.ObjectivePoints(objectives), params.TravelMode, capTime)
	if err != nil {
		return nil, fmt.Errorf("vrp screening: %w", err)
	}
	for agentID, stops := range routes {
		i := agentIdx[agentID]
		for _, id := range stops {
			j := objIdx[id]
			if capDist && costs.DistanceKm[i][j] > maxDist {
				drop[j] = true
			}
			if capTime && costs.HasDurations() && costs.DurationS[i][j] > maxTime {
				drop[j] = true
			}
		}
	}
	return drop, nil
}

// InsertionRouter builds routes in-process by cheapest insertion. Each agent
// is a vehicle starting and ending at its own location.
type InsertionRouter struct {
	Cost CostSource
	// MaxSpanKm caps each route's total length. Zero means unlimited.
	MaxSpanKm float64
	// SpanCoefficient penalises growth of the longest route.
	SpanCoefficient float64
	TwoOpt          bool
	Log             logger.Logger
}

// Routes inserts objectives farthest-first at the position that increases the
// penalised cost least. Per-agent capacity is params.MaxPerAgent.
func (r InsertionRouter) Routes(ctx context.Context, agents []model.Agent, objectives []model.Objective, params model.Constraints) (model.Assignment, error) {
	if r.MaxSpanKm < 0 || r.SpanCoefficient < 0 {
		return nil, ErrNegativeParameter
	}
	cost := r.Cost
	if cost == nil {
		cost = RadialCost{}
	}
	n, m := len(agents), len(objectives)
	nodes := append(model.AgentPoints(agents), model.ObjectivePoints(objectives)...)
	nm, err := NodeMatrix(ctx, cost, nodes, params.TravelMode)
	if err != nil {
		return nil, err
	}
	d := nm.DistanceKm

	order := make([]int, m)
	nearest := make([]float64, m)
	for j := range order {
		order[j] = j
		nearest[j] = math.Inf(1)
		for i := 0; i < n; i++ {
			nearest[j] = min(nearest[j], d[i][n+j])
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case nearest[a] > nearest[b]:
			return -1
		case nearest[a] < nearest[b]:
			return 1
		}
		return 0
	})

	routes := make([][]int, n)
	lengths := make([]float64, n)
	longest := 0.0
	for _, j := range order {
		node := n + j
		bestV, bestPos := -1, 0
		bestScore, bestLen := math.Inf(1), 0.0
		for v := 0; v < n; v++ {
			if params.MaxPerAgent > 0 && len(routes[v]) >= params.MaxPerAgent {
				continue
			}
			for p := 0; p <= len(routes[v]); p++ {
				prev, next := v, v
				if p > 0 {
					prev = routes[v][p-1]
				}
				if p < len(routes[v]) {
					next = routes[v][p]
				}
				delta := d[prev][node] + d[node][next] - d[prev][next]
				newLen := lengths[v] + delta
				if r.MaxSpanKm > 0 && newLen > r.MaxSpanKm {
					continue
				}
				score := delta + r.SpanCoefficient*math.Max(0, newLen-longest)
				if score < bestScore {
					bestV, bestPos, bestScore, bestLen = v, p, score, newLen
				}
			}
		}
		if bestV < 0 {
			return nil, fmt.Errorf("objective %s: %w", objectives[j].ID, ErrNoSolution)
		}
		routes[bestV] = slices.Insert(routes[bestV], bestPos, node)
		lengths[bestV] = bestLen
		longest = math.Max(longest, bestLen)
	}

	out := model.Assignment{}
	for v, route := range routes {
		if len(route) == 0 {
			continue
		}
		if r.TwoOpt {
			route = improve2Opt(d, v, route)
		}
		ids := make([]string, len(route))
		for k, node := range route {
			ids[k] = objectives[node-n].ID
		}
		out[agents[v].ID] = ids
	}
	logger.OrNop(r.Log).Debugw("vrp: routes built", map[string]any{"vehicles": len(out), "longest_km": longest})
	return out, nil
}

// improve2Opt reverses route segments while the closed tour gets shorter.
// Lengths are recomputed in full so asymmetric matrices are handled.
func improve2Opt(d [][]float64, depot int, route []int) []int {
	best := append([]int(nil), route...)
	bestLen := tourLength(d, depot, best)
	for improved := true; improved; {
		improved = false
		for i := 0; i < len(best)-1; i++ {
			for k := i + 1; k < len(best); k++ {
				cand := append([]int(nil), best...)
				slices.Reverse(cand[i : k+1])
				if l := tourLength(d, depot, cand); l+1e-9 < bestLen {
					best, bestLen = cand, l
					improved = true
				}
			}
		}
	}
	return best
}

func tourLength(d [][]float64, depot int, route []int) float64 {
	total := 0.0
	prev := depot
	for _, node := range route {
		total += d[prev][node]
		prev = node
	}
	return total + d[prev][depot]
}
