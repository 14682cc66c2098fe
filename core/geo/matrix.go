package geo

import "fmt"

// Matrix holds pairwise costs indexed [source][destination].
// DurationS is nil when durations were not requested.
type Matrix struct {
	DistanceKm [][]float64
	DurationS  [][]float64
}

// NewMatrix allocates a rows x cols matrix, with durations when withDuration.
func NewMatrix(rows, cols int, withDuration bool) Matrix {
	m := Matrix{DistanceKm: alloc(rows, cols)}
	if withDuration {
		m.DurationS = alloc(rows, cols)
	}
	return m
}

func alloc(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Rows returns the number of sources.
func (m Matrix) Rows() int { return len(m.DistanceKm) }

// Cols returns the number of destinations.
func (m Matrix) Cols() int {
	if len(m.DistanceKm) == 0 {
		return 0
	}
	return len(m.DistanceKm[0])
}

// HasDurations reports whether durations are populated.
func (m Matrix) HasDurations() bool { return m.DurationS != nil }

// CheckShape returns an error unless the matrix is rows x cols.
func (m Matrix) CheckShape(rows, cols int) error {
	if m.Rows() != rows {
		return fmt.Errorf("matrix has %d rows, want %d", m.Rows(), rows)
	}
	for i, r := range m.DistanceKm {
		if len(r) != cols {
			return fmt.Errorf("matrix row %d has %d cols, want %d", i, len(r), cols)
		}
	}
	if m.DurationS != nil {
		if len(m.DurationS) != rows {
			return fmt.Errorf("duration matrix has %d rows, want %d", len(m.DurationS), rows)
		}
		for i, r := range m.DurationS {
			if len(r) != cols {
				return fmt.Errorf("duration row %d has %d cols, want %d", i, len(r), cols)
			}
		}
	}
	return nil
}
