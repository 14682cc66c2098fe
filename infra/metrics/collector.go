package metrics

import (
	"context"

	"github.com/kilianp07/disburse/core/events"
	"github.com/kilianp07/disburse/internal/eventbus"
	"github.com/prometheus/client_golang/prometheus"
)

// ProgressCollector mirrors the live batch progress published on the event
// bus into gauges, so a scrape during a long run shows how far it got.
type ProgressCollector struct {
	planned *prometheus.GaugeVec
	done    *prometheus.GaugeVec
}

// NewProgressCollector registers the progress gauges on reg.
func NewProgressCollector(reg prometheus.Registerer) (*ProgressCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &ProgressCollector{
		planned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disburse_run_clusters_planned",
			Help: "Clusters produced by the partitioner for the current run",
		}, []string{"domain"}),
		done: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disburse_run_clusters_done",
			Help: "Clusters processed so far in the current run, by status",
		}, []string{"domain", "status"}),
	}
	var err error
	if c.planned, err = register(reg, c.planned); err != nil {
		return nil, err
	}
	if c.done, err = register(reg, c.done); err != nil {
		return nil, err
	}
	return c, nil
}

// Start subscribes to bus and updates the gauges until ctx is canceled or
// the bus is closed.
func (c *ProgressCollector) Start(ctx context.Context, bus eventbus.EventBus) {
	if bus == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				c.handle(ev)
			}
		}
	}()
}

func (c *ProgressCollector) handle(ev eventbus.Event) {
	switch e := ev.(type) {
	case events.RunEvent:
		if !e.Done {
			c.done.DeletePartialMatch(prometheus.Labels{"domain": e.Domain})
			c.planned.WithLabelValues(e.Domain).Set(float64(e.Clusters))
		}
	case events.ClusterEvent:
		c.done.WithLabelValues(e.Domain, e.Status).Inc()
	}
}
