package model

import (
	"errors"
	"fmt"
	"strings"
)

// Agent is a mobile worker able to receive objectives.
type Agent struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the agent location.
func (a Agent) Point() GeoPoint { return GeoPoint{Lat: a.Lat, Lon: a.Lon} }

// Validate checks the id and coordinates.
func (a Agent) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return &ValidationError{Field: "id", Value: a.ID, Cause: errors.New("empty id")}
	}
	if err := a.Point().Validate(); err != nil {
		return fmt.Errorf("agent %s: %w", a.ID, err)
	}
	return nil
}

// Objective is a geolocated case requiring a visit.
//
// Assigned is only set on the copies returned inside a SolveResult; solvers
// never modify the objectives they receive.
type Objective struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Assigned bool    `json:"assigned,omitempty"`
}

// Point returns the objective location.
func (o Objective) Point() GeoPoint { return GeoPoint{Lat: o.Lat, Lon: o.Lon} }

// Validate checks the id and coordinates.
func (o Objective) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return &ValidationError{Field: "id", Value: o.ID, Cause: errors.New("empty id")}
	}
	if err := o.Point().Validate(); err != nil {
		return fmt.Errorf("objective %s: %w", o.ID, err)
	}
	return nil
}

// AgentPoints returns the locations of agents in order.
func AgentPoints(agents []Agent) []GeoPoint {
	pts := make([]GeoPoint, len(agents))
	for i, a := range agents {
		pts[i] = a.Point()
	}
	return pts
}

// ObjectivePoints returns the locations of objectives in order.
func ObjectivePoints(objectives []Objective) []GeoPoint {
	pts := make([]GeoPoint, len(objectives))
	for i, o := range objectives {
		pts[i] = o.Point()
	}
	return pts
}
