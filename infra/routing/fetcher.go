package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/disburse/core/geo"
	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/model"
	"golang.org/x/time/rate"
)

// ErrTooManySources is returned when the sources alone leave no room for a
// destination within the coordinate limit.
var ErrTooManySources = errors.New("too many sources for matrix request")

// HTTPError is returned for any non-2xx matrix response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("matrix api: HTTP %d: %s", e.StatusCode, e.Body)
}

type matrixResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// NewLimiter returns a limiter admitting rpm requests per minute, one at a
// time. A single limiter should be shared by every fetch of a run.
func NewLimiter(rpm int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// ChunkedFetcher retrieves road-network matrices, splitting destinations so
// that each request carries at most MaxCoordinates coordinates.
type ChunkedFetcher struct {
	baseURL string
	token   string
	limit   int
	client  *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

// NewChunkedFetcher builds a fetcher. A nil client gets the configured
// timeout; a nil limiter is built from RequestsPerMinute.
func NewChunkedFetcher(cfg Config, limiter *rate.Limiter, client *http.Client, log logger.Logger) *ChunkedFetcher {
	cfg.SetDefaults()
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	if limiter == nil {
		limiter = NewLimiter(cfg.RequestsPerMinute)
	}
	return &ChunkedFetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		limit:   cfg.MaxCoordinates,
		client:  client,
		limiter: limiter,
		log:     logger.OrNop(log),
	}
}

// MaxCoordinates returns the per-request coordinate limit.
func (f *ChunkedFetcher) MaxCoordinates() int { return f.limit }

// Fetch returns the [sources][destinations] matrix in kilometers, with
// durations in seconds when withDuration. Every source is re-sent with each
// destination chunk. Any failed chunk aborts the whole fetch.
func (f *ChunkedFetcher) Fetch(ctx context.Context, sources, destinations []model.GeoPoint, mode model.TravelMode, withDuration bool) (geo.Matrix, error) {
	if len(sources) > f.limit-1 {
		return geo.Matrix{}, fmt.Errorf("%w: %d sources, limit %d", ErrTooManySources, len(sources), f.limit)
	}
	if mode == "" {
		mode = model.TravelDriving
	}
	out := geo.NewMatrix(len(sources), len(destinations), withDuration)
	if len(sources) == 0 || len(destinations) == 0 {
		return out, nil
	}
	chunk := f.limit - len(sources)
	chunks := (len(destinations) + chunk - 1) / chunk
	f.log.Debugw("matrix fetch", map[string]any{
		"sources":      len(sources),
		"destinations": len(destinations),
		"chunks":       chunks,
		"mode":         string(mode),
	})
	for start := 0; start < len(destinations); start += chunk {
		end := min(start+chunk, len(destinations))
		if err := f.limiter.Wait(ctx); err != nil {
			return geo.Matrix{}, fmt.Errorf("matrix rate limit: %w", err)
		}
		resp, err := f.request(ctx, sources, destinations[start:end], mode, withDuration)
		if err != nil {
			return geo.Matrix{}, fmt.Errorf("destinations %d-%d: %w", start, end, err)
		}
		if err := fill(out.DistanceKm, resp.Distances, start, end-start, 1.0/1000); err != nil {
			return geo.Matrix{}, fmt.Errorf("distances %d-%d: %w", start, end, err)
		}
		if withDuration {
			if err := fill(out.DurationS, resp.Durations, start, end-start, 1); err != nil {
				return geo.Matrix{}, fmt.Errorf("durations %d-%d: %w", start, end, err)
			}
		}
	}
	return out, nil
}

// fill copies a chunk response into dst starting at column offset.
func fill(dst [][]float64, src [][]*float64, offset, width int, scale float64) error {
	if len(src) != len(dst) {
		return fmt.Errorf("got %d rows, want %d", len(src), len(dst))
	}
	for i, row := range src {
		if len(row) != width {
			return fmt.Errorf("row %d has %d cols, want %d", i, len(row), width)
		}
		for j, v := range row {
			if v == nil {
				return fmt.Errorf("no route from source %d to destination %d", i, offset+j)
			}
			dst[i][offset+j] = *v * scale
		}
	}
	return nil
}

func (f *ChunkedFetcher) request(ctx context.Context, sources, destinations []model.GeoPoint, mode model.TravelMode, withDuration bool) (*matrixResponse, error) {
	coords := make([]string, 0, len(sources)+len(destinations))
	srcIdx := make([]string, 0, len(sources))
	dstIdx := make([]string, 0, len(destinations))
	for i, p := range sources {
		coords = append(coords, p.String())
		srcIdx = append(srcIdx, strconv.Itoa(i))
	}
	for j, p := range destinations {
		coords = append(coords, p.String())
		dstIdx = append(dstIdx, strconv.Itoa(len(sources)+j))
	}
	annotations := "distance"
	if withDuration {
		annotations = "distance,duration"
	}
	q := url.Values{}
	q.Set("sources", strings.Join(srcIdx, ","))
	q.Set("destinations", strings.Join(dstIdx, ","))
	q.Set("annotations", annotations)
	q.Set("access_token", f.token)
	u := fmt.Sprintf("%s/%s/%s?%s", f.baseURL, mode, strings.Join(coords, ";"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	if out.Code != "" && out.Code != "Ok" {
		return nil, fmt.Errorf("matrix api: %s: %s", out.Code, out.Message)
	}
	return &out, nil
}
