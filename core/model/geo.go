package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is wrapped by every coordinate validation failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ValidationError describes a rejected field value.
type ValidationError struct {
	Field string
	Value any
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v (%v)", e.Field, e.Value, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeoPoint returns a validated GeoPoint.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	p := GeoPoint{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

// Validate rejects latitudes outside [-90,90], longitudes outside
// [-180,180] and non-finite values.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return &ValidationError{Field: "lat", Value: p.Lat, Cause: ErrInvalidCoordinate}
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return &ValidationError{Field: "lon", Value: p.Lon, Cause: ErrInvalidCoordinate}
	}
	return nil
}

// String formats the point as "lon,lat", the order routing APIs expect.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat)
}

// Bounds is a bounding box used to narrow coordinate lookups.
type Bounds struct {
	TopLeft     GeoPoint `json:"top_left"`
	BottomRight GeoPoint `json:"bottom_right"`
}

// Validate checks both corners and their ordering.
func (b Bounds) Validate() error {
	if err := b.TopLeft.Validate(); err != nil {
		return err
	}
	if err := b.BottomRight.Validate(); err != nil {
		return err
	}
	if b.TopLeft.Lat < b.BottomRight.Lat {
		return &ValidationError{Field: "bounds", Value: b, Cause: errors.New("top_left below bottom_right")}
	}
	return nil
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat <= b.TopLeft.Lat && p.Lat >= b.BottomRight.Lat &&
		p.Lon >= b.TopLeft.Lon && p.Lon <= b.BottomRight.Lon
}
