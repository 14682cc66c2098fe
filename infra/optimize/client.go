// Package optimize submits routing problems to a remote optimization service
// and polls for the solution.
package optimize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/disburse/core/logger"
	"github.com/kilianp07/disburse/core/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrInvalidPayload is returned before any request when an entry lacks
	// an id or carries an out-of-range coordinate.
	ErrInvalidPayload = errors.New("invalid optimize payload")
	// ErrNotReady is returned while the solution is still being computed.
	ErrNotReady = errors.New("optimize solution not ready")
)

// HTTPError is returned for a non-2xx submission response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("optimize api: HTTP %d: %s", e.StatusCode, e.Body)
}

type location struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Payload is the submission document.
type Payload struct {
	Users []location `json:"users"`
	Cases []location `json:"cases"`
}

type submitResponse struct {
	PollID string `json:"poll_id"`
}

// Route is the ordered stop list of one vehicle, including its start and
// end locations.
type Route struct {
	Vehicle string   `json:"vehicle"`
	Stops   []string `json:"stops"`
}

// Solution is the document served once the problem is solved.
type Solution struct {
	Routes []Route `json:"routes"`
}

// Visits returns each vehicle's stops without the leading start and
// trailing end locations.
func (s Solution) Visits() model.Assignment {
	out := make(model.Assignment, len(s.Routes))
	for _, r := range s.Routes {
		if len(r.Stops) <= 2 {
			continue
		}
		out[r.Vehicle] = append([]string(nil), r.Stops[1:len(r.Stops)-1]...)
	}
	return out
}

// Client talks to the optimization service. It implements
// solver.RouteOptimizer.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	log          logger.Logger
}

// NewClient builds a client. With auth configured, requests carry a bearer
// token obtained through the client credentials flow and refreshed on
// expiry.
func NewClient(cfg Config, client *http.Client, log logger.Logger) *Client {
	cfg.SetDefaults()
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if cfg.Auth.enabled() {
		cc := clientcredentials.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			TokenURL:     cfg.Auth.TokenURL,
			Scopes:       cfg.Auth.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		authed := cc.Client(ctx)
		authed.Timeout = client.Timeout
		client = authed
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         client,
		pollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		pollTimeout:  time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		log:          logger.OrNop(log),
	}
}

// NewPayload validates agents and objectives and builds the submission body.
func NewPayload(agents []model.Agent, objectives []model.Objective) (Payload, error) {
	p := Payload{
		Users: make([]location, 0, len(agents)),
		Cases: make([]location, 0, len(objectives)),
	}
	for i, a := range agents {
		if err := a.Validate(); err != nil {
			return Payload{}, fmt.Errorf("%w: users[%d]: %w", ErrInvalidPayload, i, err)
		}
		p.Users = append(p.Users, location{ID: a.ID, Lat: a.Lat, Lon: a.Lon})
	}
	for i, o := range objectives {
		if err := o.Validate(); err != nil {
			return Payload{}, fmt.Errorf("%w: cases[%d]: %w", ErrInvalidPayload, i, err)
		}
		p.Cases = append(p.Cases, location{ID: o.ID, Lat: o.Lat, Lon: o.Lon})
	}
	return p, nil
}

// Submit posts the problem and returns the poll identifier.
func (c *Client) Submit(ctx context.Context, agents []model.Agent, objectives []model.Objective) (string, error) {
	payload, err := NewPayload(agents, objectives)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("optimize submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if out.PollID == "" {
		return "", errors.New("optimize submit: empty poll id")
	}
	c.log.Debugf("optimize: submitted %d users, %d cases as %s", len(payload.Users), len(payload.Cases), out.PollID)
	return out.PollID, nil
}

// Poll fetches the solution once. Any status other than 200 yields
// ErrNotReady.
func (c *Client) Poll(ctx context.Context, pollID string) (Solution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(pollID), nil)
	if err != nil {
		return Solution{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Solution{}, fmt.Errorf("optimize poll: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Solution{}, fmt.Errorf("%w: HTTP %d", ErrNotReady, resp.StatusCode)
	}
	var sol Solution
	if err := json.NewDecoder(resp.Body).Decode(&sol); err != nil {
		return Solution{}, fmt.Errorf("decode solution: %w", err)
	}
	return sol, nil
}

// Wait polls until the solution is ready, the poll timeout elapses or ctx is
// done.
func (c *Client) Wait(ctx context.Context, pollID string) (Solution, error) {
	deadline := time.Now().Add(c.pollTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for attempt := 1; ; attempt++ {
		sol, err := c.Poll(ctx, pollID)
		if err == nil {
			return sol, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return Solution{}, err
		}
		if time.Now().After(deadline) {
			return Solution{}, fmt.Errorf("optimize %s: gave up after %d polls: %w", pollID, attempt, err)
		}
		select {
		case <-ctx.Done():
			return Solution{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Routes submits the problem and waits for the trimmed per-vehicle visits.
func (c *Client) Routes(ctx context.Context, agents []model.Agent, objectives []model.Objective, _ model.Constraints) (model.Assignment, error) {
	id, err := c.Submit(ctx, agents, objectives)
	if err != nil {
		return nil, err
	}
	sol, err := c.Wait(ctx, id)
	if err != nil {
		return nil, err
	}
	return sol.Visits(), nil
}
