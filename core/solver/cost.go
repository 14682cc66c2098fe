package solver

import (
	"context"
	"fmt"

	"github.com/kilianp07/disburse/core/geo"
	"github.com/kilianp07/disburse/core/model"
)

// Cost source names accepted in configuration.
const (
	CostRadial      = "radial"
	CostRoadNetwork = "road_network"
)

// MatrixFetcher retrieves a road-network matrix in kilometers and seconds.
type MatrixFetcher interface {
	Fetch(ctx context.Context, sources, destinations []model.GeoPoint, mode model.TravelMode, withDuration bool) (geo.Matrix, error)
}

// CostSource builds the [sources][destinations] cost matrix used by a solver.
type CostSource interface {
	Name() string
	Costs(ctx context.Context, sources, destinations []model.GeoPoint, mode model.TravelMode, withDuration bool) (geo.Matrix, error)
}

// RadialCost uses great-circle distances. It never provides durations.
type RadialCost struct{}

func (RadialCost) Name() string { return CostRadial }

func (RadialCost) Costs(_ context.Context, sources, destinations []model.GeoPoint, _ model.TravelMode, _ bool) (geo.Matrix, error) {
	return geo.Matrix{DistanceKm: geo.HaversineMatrix(sources, destinations)}, nil
}

// RoadNetworkCost delegates to a MatrixFetcher.
type RoadNetworkCost struct {
	Fetcher MatrixFetcher
	// BlockSize bounds the number of sources per fetch when building square
	// node matrices. Zero uses the fetcher's limit when it exposes one.
	BlockSize int
}

func (RoadNetworkCost) Name() string { return CostRoadNetwork }

func (c RoadNetworkCost) Costs(ctx context.Context, sources, destinations []model.GeoPoint, mode model.TravelMode, withDuration bool) (geo.Matrix, error) {
	if c.Fetcher == nil {
		return geo.Matrix{}, fmt.Errorf("road network cost: no fetcher configured")
	}
	m, err := c.Fetcher.Fetch(ctx, sources, destinations, mode, withDuration)
	if err != nil {
		return geo.Matrix{}, err
	}
	if err := m.CheckShape(len(sources), len(destinations)); err != nil {
		return geo.Matrix{}, fmt.Errorf("road network cost: %w", err)
	}
	return m, nil
}

type limiter interface {
	MaxCoordinates() int
}

func (c RoadNetworkCost) blockSize() int {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	if l, ok := c.Fetcher.(limiter); ok && l.MaxCoordinates() >= 4 {
		return l.MaxCoordinates() / 2
	}
	return 12
}

// NodeMatrix returns the square matrix between all nodes. Road-network
// sources are fetched in blocks so each request stays under the fetcher's
// source limit.
func NodeMatrix(ctx context.Context, cost CostSource, nodes []model.GeoPoint, mode model.TravelMode) (geo.Matrix, error) {
	road, ok := cost.(RoadNetworkCost)
	if !ok {
		return cost.Costs(ctx, nodes, nodes, mode, false)
	}
	out := geo.NewMatrix(len(nodes), len(nodes), false)
	block := road.blockSize()
	for start := 0; start < len(nodes); start += block {
		end := min(start+block, len(nodes))
		part, err := road.Costs(ctx, nodes[start:end], nodes, mode, false)
		if err != nil {
			return geo.Matrix{}, fmt.Errorf("node rows %d-%d: %w", start, end, err)
		}
		copy(out.DistanceKm[start:end], part.DistanceKm)
	}
	return out, nil
}
