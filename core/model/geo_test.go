package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"north pole", 90, 0, false},
		{"south antimeridian", -90, -180, false},
		{"lat too high", 90.0001, 0, true},
		{"lat too low", -91, 0, true},
		{"lon too high", 0, 180.5, true},
		{"lon too low", 0, -181, true},
		{"nan", math.NaN(), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewGeoPoint(tc.lat, tc.lon)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.lat, p.Lat)
			assert.Equal(t, tc.lon, p.Lon)
		})
	}
}

func TestGeoPointString(t *testing.T) {
	p := GeoPoint{Lat: 40.76, Lon: -73.98}
	assert.Equal(t, "-73.980000,40.760000", p.String())
}

func TestBoundsValidate(t *testing.T) {
	ok := Bounds{TopLeft: GeoPoint{Lat: 10, Lon: -5}, BottomRight: GeoPoint{Lat: 5, Lon: 5}}
	assert.NoError(t, ok.Validate())
	flipped := Bounds{TopLeft: GeoPoint{Lat: 5, Lon: -5}, BottomRight: GeoPoint{Lat: 10, Lon: 5}}
	assert.Error(t, flipped.Validate())
}

func TestAgentObjectiveValidate(t *testing.T) {
	assert.NoError(t, Agent{ID: "a", Lat: 1, Lon: 1}.Validate())
	assert.Error(t, Agent{ID: " ", Lat: 1, Lon: 1}.Validate())
	err := Objective{ID: "o", Lat: 100, Lon: 1}.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "lat", verr.Field)
}
