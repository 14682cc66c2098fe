package config

import (
	"errors"
	"fmt"

	"github.com/kilianp07/disburse/core/model"
	"github.com/kilianp07/disburse/core/solver"
)

const (
	DefaultChunkSize     = 100
	DefaultMaxObjectives = 10000
)

// DisbursementConfig drives one batch: which solver runs, how the input is
// partitioned and the default assignment constraints.
type DisbursementConfig struct {
	Domain           string            `json:"domain"`
	Solver           solver.Config     `json:"solver"`
	ClusterChunkSize int               `json:"cluster_chunk_size"`
	MaxObjectives    int               `json:"max_objectives"`
	Constraints      model.Constraints `json:"constraints"`
	// Seed makes partitioning reproducible; 0 keeps the default seed.
	Seed uint64 `json:"seed"`
}

func (c *DisbursementConfig) SetDefaults() {
	if c.Domain == "" {
		c.Domain = "default"
	}
	c.Solver.SetDefaults()
	if c.ClusterChunkSize <= 0 {
		c.ClusterChunkSize = DefaultChunkSize
	}
	if c.MaxObjectives <= 0 {
		c.MaxObjectives = DefaultMaxObjectives
	}
	if c.Constraints.TravelMode == "" {
		c.Constraints.TravelMode = model.TravelDriving
	}
}

func (c DisbursementConfig) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if c.ClusterChunkSize <= 0 {
		return errors.New("cluster_chunk_size must be > 0")
	}
	if c.MaxObjectives <= 0 {
		return errors.New("max_objectives must be > 0")
	}
	if err := c.Constraints.Validate(); err != nil {
		return fmt.Errorf("constraints: %w", err)
	}
	return nil
}
