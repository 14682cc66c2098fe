package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/disburse/core/metrics"
	"github.com/kilianp07/disburse/infra/logger"
)

// InfluxConfig locates an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes solve events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes one cluster_solve point per event.
func (s *InfluxSink) RecordSolve(events []coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, e := range events {
		p := write.NewPointWithMeasurement("cluster_solve").
			AddTag("run_id", e.RunID).
			AddTag("domain", e.Domain).
			AddTag("cluster_id", strconv.Itoa(e.ClusterID)).
			AddTag("solver", e.Solver).
			AddTag("status", e.Status).
			AddField("agents", e.Agents).
			AddField("objectives", e.Objectives).
			AddField("assigned", e.Assigned).
			AddField("unassigned", e.Unassigned).
			AddField("duration_ms", e.Duration.Milliseconds())
		if e.Err != "" {
			p = p.AddField("error", e.Err)
		}
		p = p.SetTime(e.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun writes the batch summary.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("disburse_run").
		AddTag("run_id", sum.RunID).
		AddTag("domain", sum.Domain).
		AddTag("solver", sum.Solver).
		AddField("clusters", sum.Clusters).
		AddField("solved", sum.Solved).
		AddField("skipped", sum.Skipped).
		AddField("failed", sum.Failed).
		AddField("assigned", sum.Assigned).
		AddField("unassigned", sum.Unassigned).
		AddField("duration_ms", sum.Duration.Milliseconds()).
		SetTime(sum.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
