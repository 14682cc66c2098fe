package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// ErrInvalidChunkSize is returned for a non-positive cluster chunk size.
var ErrInvalidChunkSize = errors.New("cluster chunk size must be positive")

const defaultMaxIter = 300

// Partition is the output of a Partitioner run. Clusters are indexed by id
// and may be empty.
type Partition struct {
	Clusters []model.Cluster
	// NoAgents and NoObjectives count clusters lacking agents or objectives.
	NoAgents     int
	NoObjectives int
}

// Solvable returns the clusters holding both agents and objectives.
func (p Partition) Solvable() []model.Cluster {
	out := make([]model.Cluster, 0, len(p.Clusters))
	for _, c := range p.Clusters {
		if c.Solvable() {
			out = append(out, c)
		}
	}
	return out
}

// Partitioner groups agents and objectives with k-means++ and Lloyd
// iterations on (lat, lon).
type Partitioner struct {
	ChunkSize int
	MaxIter   int
	Seed      uint64
	Log       logger.Logger
}

// Count returns floor(max(agents, objectives)/chunk)+1.
func Count(agents, objectives, chunk int) int {
	return max(agents, objectives)/chunk + 1
}

// Partition clusters the concatenation of agents then objectives and splits
// every cluster back into its agent and objective members. Empty inputs
// produce no clusters.
func (p Partitioner) Partition(agents []model.Agent, objectives []model.Objective) (Partition, error) {
	if p.ChunkSize <= 0 {
		return Partition{}, fmt.Errorf("%w: %d", ErrInvalidChunkSize, p.ChunkSize)
	}
	if len(agents)+len(objectives) == 0 {
		return Partition{}, nil
	}
	k := Count(len(agents), len(objectives), p.ChunkSize)
	points := make([][]float64, 0, len(agents)+len(objectives))
	for _, a := range agents {
		points = append(points, []float64{a.Lat, a.Lon})
	}
	for _, o := range objectives {
		points = append(points, []float64{o.Lat, o.Lon})
	}

	labels := p.kmeans(points, k)

	out := Partition{Clusters: make([]model.Cluster, k)}
	for id := range out.Clusters {
		out.Clusters[id].ID = id
	}
	for idx, l := range labels {
		if idx < len(agents) {
			out.Clusters[l].Agents = append(out.Clusters[l].Agents, agents[idx])
			continue
		}
		out.Clusters[l].Objectives = append(out.Clusters[l].Objectives, objectives[idx-len(agents)])
	}
	for _, c := range out.Clusters {
		if len(c.Agents) == 0 {
			out.NoAgents++
		}
		if len(c.Objectives) == 0 {
			out.NoObjectives++
		}
	}
	logger.OrNop(p.Log).Debugw("partition computed", map[string]any{
		"clusters":      k,
		"no_agents":     out.NoAgents,
		"no_objectives": out.NoObjectives,
	})
	return out, nil
}

func (p Partitioner) kmeans(points [][]float64, k int) []int {
	seed := p.Seed
	if seed == 0 {
		seed = 1
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	centers := seedPlusPlus(points, k, src)

	maxIter := p.MaxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}
	dim := len(points[0])
	for it := 0; it < maxIter; it++ {
		changed := false
		for i, pt := range points {
			if l := nearest(centers, pt); l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, pt := range points {
			floats.Add(sums[labels[i]], pt)
			counts[labels[i]]++
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centers[c] = sums[c]
		}
	}
	return labels
}

// seedPlusPlus picks k initial centers, each drawn with probability
// proportional to its squared distance from the closest center so far.
// When every point coincides with a center the remaining centers repeat the
// first one and end up empty.
func seedPlusPlus(points [][]float64, k int, src rand.Source) [][]float64 {
	rng := rand.New(src)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), points[rng.IntN(len(points))]...))
	weights := make([]float64, len(points))
	for len(centers) < k {
		for i, pt := range points {
			d := floats.Distance(pt, centers[nearest(centers, pt)], 2)
			weights[i] = d * d
		}
		idx, ok := sampleuv.NewWeighted(weights, src).Take()
		if !ok {
			centers = append(centers, append([]float64(nil), centers[0]...))
			continue
		}
		centers = append(centers, append([]float64(nil), points[idx]...))
	}
	return centers
}

func nearest(centers [][]float64, pt []float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := floats.Distance(pt, center, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
