package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/disburse/core/model"
)

type fakeCounter struct {
	counts map[int]int
	err    error
	probed []int
}

func (f *fakeCounter) MaxBucketCount(_ context.Context, _ string, precision int, _ *model.Bounds) (int, error) {
	f.probed = append(f.probed, precision)
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[precision], nil
}

func TestResolvePrecision(t *testing.T) {
	fc := &fakeCounter{counts: map[int]int{1: 50000, 2: 20000, 3: 9999, 4: 10}}
	p, err := ResolvePrecision(context.Background(), fc, "location", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p)
	assert.Equal(t, []int{1, 2, 3}, fc.probed)
}

func TestResolvePrecisionBoundaryIsExclusive(t *testing.T) {
	fc := &fakeCounter{counts: map[int]int{1: 20000, 2: MaxBucketDocs, 3: 42}}
	p, err := ResolvePrecision(context.Background(), fc, "location", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p)
	assert.Equal(t, []int{1, 2, 3}, fc.probed)
}

func TestResolvePrecisionExhausted(t *testing.T) {
	counts := map[int]int{}
	for i := MinPrecision; i <= MaxPrecision; i++ {
		counts[i] = MaxBucketDocs + 1
	}
	p, err := ResolvePrecision(context.Background(), &fakeCounter{counts: counts}, "location", nil)
	require.NoError(t, err)
	assert.Equal(t, MaxPrecision, p)
}

func TestResolvePrecisionErrors(t *testing.T) {
	_, err := ResolvePrecision(context.Background(), &fakeCounter{err: errors.New("es down")}, "location", nil)
	assert.Error(t, err)

	bad := &model.Bounds{TopLeft: model.GeoPoint{Lat: 95}}
	_, err = ResolvePrecision(context.Background(), &fakeCounter{}, "location", bad)
	assert.ErrorIs(t, err, model.ErrInvalidCoordinate)
}
