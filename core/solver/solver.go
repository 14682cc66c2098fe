package solver

import (
	"context"
	"fmt"

	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/model"
)

// Kind identifies a solver variant.
type Kind string

const (
	KindGreedy Kind = "greedy"
	KindLP     Kind = "lp"
	KindVRP    Kind = "vrp"
)

// Solver assigns objectives to agents under constraints. Implementations
// never mutate their inputs.
type Solver interface {
	Kind() Kind
	Solve(ctx context.Context, agents []model.Agent, objectives []model.Objective, c model.Constraints) (model.SolveResult, error)
}

// VRPConfig tunes the routing solver.
type VRPConfig struct {
	// Backend is "insertion" (in-process) or "remote".
	Backend         string  `json:"backend"`
	MaxRouteSpanKm  float64 `json:"max_route_span_km"`
	SpanCoefficient float64 `json:"span_cost_coefficient"`
	TwoOpt          bool    `json:"two_opt"`
}

// Config selects the solver variant and its cost source.
type Config struct {
	Type Kind   `json:"type"`
	Cost string `json:"cost"`
	// LPFallback solves with the greedy allocator when the simplex fails.
	LPFallback bool      `json:"lp_fallback"`
	VRP        VRPConfig `json:"vrp"`
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Type == "" {
		c.Type = KindLP
	}
	if c.Cost == "" {
		c.Cost = CostRoadNetwork
	}
	if c.VRP.Backend == "" {
		c.VRP.Backend = "insertion"
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Type {
	case KindGreedy, KindLP, KindVRP:
	default:
		return fmt.Errorf("unknown solver %q", c.Type)
	}
	switch c.Cost {
	case CostRadial, CostRoadNetwork:
	default:
		return fmt.Errorf("unknown cost source %q", c.Cost)
	}
	switch c.VRP.Backend {
	case "insertion", "remote":
	default:
		return fmt.Errorf("unknown vrp backend %q", c.VRP.Backend)
	}
	if c.VRP.MaxRouteSpanKm < 0 || c.VRP.SpanCoefficient < 0 {
		return fmt.Errorf("vrp: %w", ErrNegativeParameter)
	}
	return nil
}

// Deps carries the collaborators a solver may need.
type Deps struct {
	Fetcher MatrixFetcher
	// Remote is used by the vrp solver when VRP.Backend is "remote".
	Remote RouteOptimizer
	Log    logger.Logger
}

// New builds the solver selected by cfg.
func New(cfg Config, deps Deps) (Solver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var cost CostSource = RadialCost{}
	if cfg.Cost == CostRoadNetwork {
		if deps.Fetcher == nil {
			return nil, fmt.Errorf("cost %q requires a matrix fetcher", cfg.Cost)
		}
		cost = RoadNetworkCost{Fetcher: deps.Fetcher}
	}
	switch cfg.Type {
	case KindGreedy:
		return GreedySolver{}, nil
	case KindLP:
		s := LPSolver{Cost: cost, Log: deps.Log}
		if cfg.LPFallback {
			s.Fallback = GreedySolver{}
		}
		return s, nil
	default:
		var router RouteOptimizer = InsertionRouter{
			Cost:            cost,
			MaxSpanKm:       cfg.VRP.MaxRouteSpanKm,
			SpanCoefficient: cfg.VRP.SpanCoefficient,
			TwoOpt:          cfg.VRP.TwoOpt,
			Log:             deps.Log,
		}
		if cfg.VRP.Backend == "remote" {
			if deps.Remote == nil {
				return nil, fmt.Errorf("vrp backend remote requires an optimize client")
			}
			router = deps.Remote
		}
		return VRPSolver{Router: router, Cost: cost, Log: deps.Log}, nil
	}
}
