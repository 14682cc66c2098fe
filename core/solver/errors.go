package solver

import "errors"

var (
	// ErrNegativeParameter is returned when a distance or capacity bound is negative.
	ErrNegativeParameter = errors.New("negative solver parameter")
	// ErrNoSolution is returned when a routing search finds no feasible plan.
	ErrNoSolution = errors.New("no solution found")
)
