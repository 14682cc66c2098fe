package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/disburse/config"
	"github.com/kilianp07/disburse/core/cluster"
	"github.com/kilianp07/disburse/core/disburse"
	"github.com/kilianp07/disburse/core/disburse/logging"
	coremetrics "github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/core/solver"
	"github.com/kilianp07/disburse/infra/logger"
	"github.com/kilianp07/disburse/infra/metrics"
	"github.com/kilianp07/disburse/infra/optimize"
	"github.com/kilianp07/disburse/infra/routing"
	"github.com/kilianp07/disburse/internal/eventbus"

	_ "github.com/kilianp07/disburse/app/plugins"
)

// Service wires configuration into a ready-to-run disbursement job. When
// metrics.prometheus_port is set the default registry is served until Close.
type Service struct {
	Job *disburse.Job

	cfg      *config.Config
	bus      *eventbus.Bus
	store    logging.RunStore
	log      logger.Logger
	stop     context.CancelFunc
	closers  []func() error
	gatherer prometheus.Gatherer
}

// New creates a Service from the configuration. Every external adapter is
// built here; nothing connects until the first run except the metrics sinks
// and the run log.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	d := cfg.Disbursement

	deps := solver.Deps{Log: logger.New("solver")}
	if cfg.UsesRoadNetwork() {
		limiter := routing.NewLimiter(cfg.Routing.RequestsPerMinute)
		deps.Fetcher = routing.NewChunkedFetcher(cfg.Routing, limiter, nil, logger.New("matrix"))
	}
	if cfg.UsesRemoteOptimizer() {
		deps.Remote = optimize.NewClient(cfg.Optimize, nil, logger.New("optimize"))
	}
	slv, err := solver.New(d.Solver, deps)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := logging.New(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	tracker, err := disburse.NewTracker(cfg.Tracker, d.Domain)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("tracker: %w", err)
	}

	bus := eventbus.New()
	ctx, stop := context.WithCancel(context.Background())
	progress, err := metrics.NewProgressCollector(prometheus.DefaultRegisterer)
	if err != nil {
		stop()
		_ = store.Close()
		return nil, fmt.Errorf("progress collector: %w", err)
	}
	progress.Start(ctx, bus)

	svc := &Service{
		cfg:      cfg,
		bus:      bus,
		store:    store,
		log:      logg,
		stop:     stop,
		gatherer: prometheus.DefaultGatherer,
	}
	switch c := tracker.(type) {
	case interface{ Close() error }:
		svc.closers = append(svc.closers, c.Close)
	case interface{ Close() }:
		svc.closers = append(svc.closers, func() error { c.Close(); return nil })
	}
	svc.Job = &disburse.Job{
		Domain: d.Domain,
		Solver: slv,
		Partitioner: cluster.Partitioner{
			ChunkSize: d.ClusterChunkSize,
			Seed:      d.Seed,
			Log:       logger.New("cluster"),
		},
		Constraints:   d.Constraints,
		MaxObjectives: d.MaxObjectives,
		Tracker:       tracker,
		Log:           logger.New("disburse"),
		Bus:           bus,
		Sink:          sink,
		Store:         store,
	}
	if cfg.Metrics.PushURL != "" {
		svc.Job.Push = svc.push
	}
	if port := cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, ":"+port, svc.gatherer, logg); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
	}
	return svc, nil
}

func (s *Service) push(ctx context.Context) error {
	instance, _ := os.Hostname()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return metrics.Push(ctx, s.cfg.Metrics.PushURL, s.cfg.Metrics.Job, instance, s.gatherer)
}

// Run executes one batch.
func (s *Service) Run(ctx context.Context, req disburse.Request) (disburse.Report, error) {
	return s.Job.Run(ctx, req)
}

// Partition clusters the request without solving it.
func (s *Service) Partition(req disburse.Request) (cluster.Partition, error) {
	if err := req.Validate(); err != nil {
		return cluster.Partition{}, err
	}
	return s.Job.Partitioner.Partition(req.Agents, req.Objectives)
}

// RunLog is the store receiving one record per processed cluster.
func (s *Service) RunLog() logging.RunStore { return s.store }

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.stop()
	s.bus.Close()
	errs := []error{s.store.Close()}
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
