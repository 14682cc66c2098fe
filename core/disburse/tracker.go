package disburse

import (
	"context"

	"github.com/kilianp07/disburse/core/factory"
)

// Tracker receives batch status updates. Implementations live outside the
// core; the orchestrator only calls them.
type Tracker interface {
	MarkRequested(ctx context.Context) error
	UpdateProgress(ctx context.Context, current, total int) error
	MarkCompleted(ctx context.Context) error
	MarkAsError(ctx context.Context, slug string) error
}

// NopTracker ignores every update.
type NopTracker struct{}

func (NopTracker) MarkRequested(context.Context) error            { return nil }
func (NopTracker) UpdateProgress(context.Context, int, int) error { return nil }
func (NopTracker) MarkCompleted(context.Context) error            { return nil }
func (NopTracker) MarkAsError(context.Context, string) error      { return nil }

var trackerRegistry = factory.NewRegistry[Tracker]()

// RegisterTracker adds a tracker factory identified by name.
func RegisterTracker(name string, f factory.Factory[Tracker]) error {
	return trackerRegistry.Register(name, f)
}

// TrackerTypes lists the registered tracker names.
func TrackerTypes() []string { return trackerRegistry.Types() }

// NewTracker creates the tracker described by cfg for the given domain. The
// domain is passed to the factory as conf["domain"]. An empty type yields a
// NopTracker.
func NewTracker(cfg factory.ModuleConfig, domain string) (Tracker, error) {
	if cfg.Type == "" {
		return NopTracker{}, nil
	}
	conf := make(map[string]any, len(cfg.Conf)+1)
	for k, v := range cfg.Conf {
		conf[k] = v
	}
	conf["domain"] = domain
	return trackerRegistry.Create(factory.ModuleConfig{Type: cfg.Type, Conf: conf})
}
