// Package disburse runs a configured solver over every cluster of a batch,
// tolerating per-cluster failures, and aggregates the outcomes into a single
// report. Job is the task entrypoint: it validates input, partitions it,
// drives the Orchestrator, and keeps an external Tracker informed.
//
// Clusters are processed strictly sequentially because road-network costs
// share one external API rate budget across the whole run.
package disburse
