package disburse

import "errors"

var (
	// ErrTooManyObjectives is returned when a batch exceeds the configured
	// objective ceiling.
	ErrTooManyObjectives = errors.New("too many objectives")
	// ErrNoClusters is returned when partitioning yields nothing to solve.
	ErrNoClusters = errors.New("no clusters produced")
)

// Error slugs reported to the Tracker.
const (
	SlugTooManyCases = "too_many_cases"
	SlugNoClusters   = "no_clusters"
	SlugInvalidInput = "invalid_input"
)
