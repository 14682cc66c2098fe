// Package metrics defines the sinks that record solver outcomes. Sinks like
// PromSink and InfluxSink (see infra/metrics) record one event per processed
// cluster and can be combined with NewMultiSink. NewMetricsSink returns a
// MultiSink automatically when multiple sinks are configured.
package metrics
