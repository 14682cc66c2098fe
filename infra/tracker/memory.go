package tracker

import (
	"context"

	"github.com/kilianp07/disburse/internal/eventbus"
)

// MemoryTracker keeps the latest status in process and broadcasts every
// update to its watchers.
type MemoryTracker struct {
	*machine
	bus *eventbus.TypedBus[Status]
}

func NewMemoryTracker(domain string) *MemoryTracker {
	t := &MemoryTracker{bus: eventbus.NewTyped[Status]()}
	t.machine = newMachine(domain, func(_ context.Context, s Status) error {
		t.bus.Publish(s)
		return nil
	})
	return t
}

// Status returns the latest snapshot.
func (t *MemoryTracker) Status() Status { return t.snapshot() }

// Watch returns a channel receiving every later update. Call Unwatch to
// release it.
func (t *MemoryTracker) Watch() <-chan Status { return t.bus.Subscribe() }

func (t *MemoryTracker) Unwatch(ch <-chan Status) { t.bus.Unsubscribe(ch) }

// Close ends every watch.
func (t *MemoryTracker) Close() { t.bus.Close() }
