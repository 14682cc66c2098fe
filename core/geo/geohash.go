package geo

import (
	"context"

	"github.com/mmcloughlin/geohash"

	"github.com/kilianp07/disburse/core/model"
)

// Geohash encodes p at the given precision (number of characters).
func Geohash(p model.GeoPoint, precision int) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, uint(precision))
}

// PointCounter is a BucketCounter over an in-memory point set. The property
// argument is ignored: every point counts as one document.
type PointCounter []model.GeoPoint

func (pc PointCounter) MaxBucketCount(ctx context.Context, _ string, precision int, bounds *model.Bounds) (int, error) {
	counts := make(map[string]int)
	best := 0
	for _, p := range pc {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if bounds != nil && !bounds.Contains(p) {
			continue
		}
		h := Geohash(p, precision)
		counts[h]++
		best = max(best, counts[h])
	}
	return best, nil
}
