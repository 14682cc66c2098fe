package solver

import (
	"context"
	"testing"

	"github.com/kilianp07/disburse/core/geo"
	"github.com/kilianp07/disburse/core/model"
)

func exampleAgents() []model.Agent {
	return []model.Agent{
		{ID: "nyc", Lat: 40.76, Lon: -73.98},
		{ID: "socal", Lat: 33.05, Lon: -117.62},
	}
}

func exampleObjectives() []model.Objective {
	return []model.Objective{
		{ID: "nh", Lat: 43.19, Lon: -71.57},
		{ID: "az", Lat: 33.87, Lon: -110.48},
	}
}

func ptr[T any](v T) *T { return &v }

// fakeFetcher answers with haversine distances and a fixed speed, recording
// every call.
type fakeFetcher struct {
	kmPerSecond float64
	calls       [][2]int
	err         error
}

func (f *fakeFetcher) Fetch(_ context.Context, sources, destinations []model.GeoPoint, _ model.TravelMode, withDuration bool) (geo.Matrix, error) {
	f.calls = append(f.calls, [2]int{len(sources), len(destinations)})
	if f.err != nil {
		return geo.Matrix{}, f.err
	}
	m := geo.Matrix{DistanceKm: geo.HaversineMatrix(sources, destinations)}
	if withDuration {
		m.DurationS = make([][]float64, len(sources))
		for i, row := range m.DistanceKm {
			m.DurationS[i] = make([]float64, len(row))
			for j, d := range row {
				m.DurationS[i][j] = d / f.kmPerSecond
			}
		}
	}
	return m, nil
}

func assertPartition(t *testing.T, res model.SolveResult, total int) {
	t.Helper()
	if res.Total() != total {
		t.Fatalf("expected %d objectives accounted for, got %d", total, res.Total())
	}
	seen := map[string]string{}
	for agent, ids := range res.Assigned {
		for _, id := range ids {
			if prev, ok := seen[id]; ok {
				t.Fatalf("objective %s assigned to %s and %s", id, prev, agent)
			}
			seen[id] = agent
		}
	}
	for _, o := range res.Unassigned {
		if _, ok := seen[o.ID]; ok {
			t.Fatalf("objective %s both assigned and unassigned", o.ID)
		}
	}
}
