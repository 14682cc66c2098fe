package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/disburse/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type matrixServer struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	nullCell bool
}

// ServeHTTP answers with distance = 1000*(source+1) + destination index in
// meters and duration = distance/10.
func (m *matrixServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r)
	m.mu.Unlock()
	if m.status != 0 {
		w.WriteHeader(m.status)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
		return
	}
	src := strings.Split(r.URL.Query().Get("sources"), ",")
	dst := strings.Split(r.URL.Query().Get("destinations"), ",")
	dist := make([][]*float64, len(src))
	dur := make([][]*float64, len(src))
	for i, s := range src {
		si, _ := strconv.Atoi(s)
		for _, d := range dst {
			di, _ := strconv.Atoi(d)
			v := float64(1000*(si+1) + di)
			t := v / 10
			if m.nullCell {
				dist[i] = append(dist[i], nil)
			} else {
				dist[i] = append(dist[i], &v)
			}
			dur[i] = append(dur[i], &t)
		}
	}
	resp := map[string]any{"code": "Ok", "distances": dist}
	if strings.Contains(r.URL.Query().Get("annotations"), "duration") {
		resp["durations"] = dur
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func points(n int) []model.GeoPoint {
	out := make([]model.GeoPoint, n)
	for i := range out {
		out[i] = model.GeoPoint{Lat: float64(i), Lon: -float64(i)}
	}
	return out
}

func newTestFetcher(url string, limit int) *ChunkedFetcher {
	return NewChunkedFetcher(Config{BaseURL: url, AccessToken: "tok", MaxCoordinates: limit}, rate.NewLimiter(rate.Inf, 1), nil, nil)
}

func TestFetch_ChunksDestinations(t *testing.T) {
	srv := &matrixServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	f := newTestFetcher(ts.URL, 5)
	m, err := f.Fetch(context.Background(), points(2), points(7), model.TravelWalking, true)
	require.NoError(t, err)
	require.NoError(t, m.CheckShape(2, 7))
	require.Len(t, srv.requests, 3)

	first := srv.requests[0]
	assert.True(t, strings.HasPrefix(first.URL.Path, "/walking/"))
	assert.Equal(t, "0,1", first.URL.Query().Get("sources"))
	assert.Equal(t, "2,3,4", first.URL.Query().Get("destinations"))
	assert.Equal(t, "distance,duration", first.URL.Query().Get("annotations"))
	assert.Equal(t, "tok", first.URL.Query().Get("access_token"))
	assert.Len(t, strings.Split(strings.TrimPrefix(first.URL.Path, "/walking/"), ";"), 5)
	assert.Equal(t, "2", srv.requests[2].URL.Query().Get("destinations"))

	// Column 3 of the full matrix is the first destination of chunk two,
	// index 2 in that request.
	assert.InDelta(t, 1.002, m.DistanceKm[0][3], 1e-9)
	assert.InDelta(t, 2.002, m.DistanceKm[1][3], 1e-9)
	assert.InDelta(t, 200.2, m.DurationS[1][3], 1e-9)
	for _, row := range m.DistanceKm {
		for _, v := range row {
			assert.NotZero(t, v)
		}
	}
}

func TestFetch_SingleRequestWithoutDurations(t *testing.T) {
	srv := &matrixServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	m, err := newTestFetcher(ts.URL, 25).Fetch(context.Background(), points(3), points(4), "", false)
	require.NoError(t, err)
	assert.False(t, m.HasDurations())
	require.Len(t, srv.requests, 1)
	assert.Equal(t, "distance", srv.requests[0].URL.Query().Get("annotations"))
	assert.True(t, strings.HasPrefix(srv.requests[0].URL.Path, "/driving/"))
}

func TestFetch_TooManySources(t *testing.T) {
	srv := &matrixServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := newTestFetcher(ts.URL, 5).Fetch(context.Background(), points(5), points(1), model.TravelDriving, false)
	assert.ErrorIs(t, err, ErrTooManySources)
	assert.Empty(t, srv.requests)
}

func TestFetch_NonSuccessAborts(t *testing.T) {
	srv := &matrixServer{status: http.StatusTooManyRequests}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := newTestFetcher(ts.URL, 4).Fetch(context.Background(), points(2), points(6), model.TravelDriving, false)
	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusTooManyRequests, herr.StatusCode)
	assert.Contains(t, herr.Body, "rate limited")
	assert.Len(t, srv.requests, 1)
}

func TestFetch_NullCell(t *testing.T) {
	srv := &matrixServer{nullCell: true}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := newTestFetcher(ts.URL, 25).Fetch(context.Background(), points(1), points(2), model.TravelDriving, false)
	assert.ErrorContains(t, err, "no route")
}

func TestFetch_EmptyInputs(t *testing.T) {
	m, err := newTestFetcher("http://unused", 25).Fetch(context.Background(), points(2), nil, model.TravelDriving, true)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 0, m.Cols())
}

func TestFetch_LimiterHonoursContext(t *testing.T) {
	srv := &matrixServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	f := NewChunkedFetcher(Config{BaseURL: ts.URL, MaxCoordinates: 3}, rate.NewLimiter(rate.Every(time.Hour), 1), nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, points(1), points(4), model.TravelDriving, false)
	assert.ErrorContains(t, err, "rate limit")
	assert.Len(t, srv.requests, 1)
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(60)
	assert.Equal(t, rate.Limit(1), l.Limit())
	assert.Equal(t, 1, l.Burst())
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, 25, c.MaxCoordinates)
	assert.NoError(t, c.Validate())
	c.MaxCoordinates = 1
	assert.Error(t, c.Validate())
}
