package geo

import (
	"math"

	"github.com/kilianp07/disburse/core/model"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0088

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// HaversineMatrix returns the [sources][destinations] distance matrix in km.
func HaversineMatrix(sources, destinations []model.GeoPoint) [][]float64 {
	out := make([][]float64, len(sources))
	for i, s := range sources {
		row := make([]float64, len(destinations))
		for j, d := range destinations {
			row[j] = HaversineKm(s, d)
		}
		out[i] = row
	}
	return out
}
