package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends every metric gathered from g to a Prometheus Pushgateway,
// replacing the previous push of the same job and instance grouping.
func Push(ctx context.Context, url, job, instance string, g prometheus.Gatherer) error {
	p := push.New(url, job).Gatherer(g)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
