// Package tracker implements batch progress trackers: an in-process one, one
// backed by Redis and one publishing over MQTT.
package tracker

import (
	"context"
	"sync"
	"time"
)

// State is the lifecycle position of a batch.
type State string

const (
	StateRequested  State = "requested"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Status is the snapshot every tracker stores or publishes.
type Status struct {
	Domain    string    `json:"domain"`
	State     State     `json:"state"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	ErrorSlug string    `json:"error_slug,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Percent returns the completed share in [0,100].
func (s Status) Percent() float64 {
	if s.Total <= 0 {
		if s.State == StateCompleted {
			return 100
		}
		return 0
	}
	return 100 * float64(s.Current) / float64(s.Total)
}

type writeFunc func(ctx context.Context, s Status) error

// machine applies tracker calls to a Status and hands every new snapshot to
// write.
type machine struct {
	mu    sync.Mutex
	cur   Status
	now   func() time.Time
	write writeFunc
}

func newMachine(domain string, write writeFunc) *machine {
	return &machine{cur: Status{Domain: domain}, now: time.Now, write: write}
}

func (m *machine) apply(ctx context.Context, f func(*Status)) error {
	m.mu.Lock()
	f(&m.cur)
	m.cur.UpdatedAt = m.now().UTC()
	snap := m.cur
	m.mu.Unlock()
	return m.write(ctx, snap)
}

func (m *machine) MarkRequested(ctx context.Context) error {
	return m.apply(ctx, func(s *Status) {
		*s = Status{Domain: s.Domain, State: StateRequested}
	})
}

func (m *machine) UpdateProgress(ctx context.Context, current, total int) error {
	return m.apply(ctx, func(s *Status) {
		s.State = StateInProgress
		s.Current, s.Total = current, total
	})
}

func (m *machine) MarkCompleted(ctx context.Context) error {
	return m.apply(ctx, func(s *Status) {
		s.State = StateCompleted
		if s.Total > 0 {
			s.Current = s.Total
		}
	})
}

func (m *machine) MarkAsError(ctx context.Context, slug string) error {
	return m.apply(ctx, func(s *Status) {
		s.State = StateError
		s.ErrorSlug = slug
	})
}

func (m *machine) snapshot() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}
