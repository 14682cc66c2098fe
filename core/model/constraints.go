package model

import (
	"errors"
	"fmt"
)

// TravelMode selects the routing profile used for road-network costs.
type TravelMode string

const (
	TravelWalking TravelMode = "walking"
	TravelCycling TravelMode = "cycling"
	TravelDriving TravelMode = "driving"
)

// ParseTravelMode converts s into a TravelMode. An empty string yields
// TravelDriving.
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case "":
		return TravelDriving, nil
	case TravelWalking, TravelCycling, TravelDriving:
		return TravelMode(s), nil
	default:
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
}

// Constraints bound how objectives may be assigned to agents.
// MaxPerAgent <= 0 means unset; see Resolve.
type Constraints struct {
	MinPerAgent    int        `json:"min_cases_per_user"`
	MaxPerAgent    int        `json:"max_cases_per_user"`
	MaxDistanceKm  *float64   `json:"max_case_distance,omitempty"`
	MaxTravelTimeS *int       `json:"max_case_travel_time_seconds,omitempty"`
	TravelMode     TravelMode `json:"travel_mode"`
}

// Validate rejects negative or inconsistent bounds.
func (c Constraints) Validate() error {
	if c.MinPerAgent < 0 {
		return &ValidationError{Field: "min_cases_per_user", Value: c.MinPerAgent, Cause: errors.New("must be >= 0")}
	}
	if c.MaxPerAgent > 0 && c.MinPerAgent > c.MaxPerAgent {
		return &ValidationError{Field: "min_cases_per_user", Value: c.MinPerAgent, Cause: errors.New("greater than max_cases_per_user")}
	}
	if c.MaxDistanceKm != nil && *c.MaxDistanceKm < 0 {
		return &ValidationError{Field: "max_case_distance", Value: *c.MaxDistanceKm, Cause: errors.New("must be >= 0")}
	}
	if c.MaxTravelTimeS != nil && *c.MaxTravelTimeS < 0 {
		return &ValidationError{Field: "max_case_travel_time_seconds", Value: *c.MaxTravelTimeS, Cause: errors.New("must be >= 0")}
	}
	if _, err := ParseTravelMode(string(c.TravelMode)); err != nil {
		return &ValidationError{Field: "travel_mode", Value: c.TravelMode, Cause: err}
	}
	return nil
}

// Resolve fills defaults for a problem of the given size. An unset
// MaxPerAgent becomes ceil(objectives/agents) so cases split evenly.
func (c Constraints) Resolve(agents, objectives int) Constraints {
	out := c
	if out.TravelMode == "" {
		out.TravelMode = TravelDriving
	}
	if out.MaxPerAgent <= 0 && agents > 0 {
		out.MaxPerAgent = (objectives + agents - 1) / agents
	}
	return out
}

// DistanceLimit returns the distance cap in km and whether one is set.
func (c Constraints) DistanceLimit() (float64, bool) {
	if c.MaxDistanceKm == nil {
		return 0, false
	}
	return *c.MaxDistanceKm, true
}

// TravelTimeLimit returns the travel time cap in seconds and whether one is set.
func (c Constraints) TravelTimeLimit() (float64, bool) {
	if c.MaxTravelTimeS == nil {
		return 0, false
	}
	return float64(*c.MaxTravelTimeS), true
}
