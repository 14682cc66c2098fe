package geo

import (
	"context"
	"fmt"

	"github.com/kilianp07/disburse/core/model"
)

const (
	// MaxBucketDocs is the document count at which a single aggregation
	// bucket requires a finer precision.
	MaxBucketDocs = 10000
	// MinPrecision and MaxPrecision bound the geohash precisions probed.
	MinPrecision = 1
	MaxPrecision = 12
)

// BucketCounter runs a grid aggregation over a case property at the given
// precision and returns the largest bucket document count.
type BucketCounter interface {
	MaxBucketCount(ctx context.Context, property string, precision int, bounds *model.Bounds) (int, error)
}

// ResolvePrecision probes successive precisions and returns the first one
// whose largest bucket holds fewer than MaxBucketDocs documents. When no
// precision qualifies MaxPrecision is returned.
func ResolvePrecision(ctx context.Context, counter BucketCounter, property string, bounds *model.Bounds) (int, error) {
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return 0, err
		}
	}
	for p := MinPrecision; p <= MaxPrecision; p++ {
		n, err := counter.MaxBucketCount(ctx, property, p, bounds)
		if err != nil {
			return 0, fmt.Errorf("precision %d: %w", p, err)
		}
		if n < MaxBucketDocs {
			return p, nil
		}
	}
	return MaxPrecision, nil
}
