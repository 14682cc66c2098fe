// Package infra contains adapters to external systems: the matrix and
// optimize HTTP clients, metrics exporters, progress trackers and the MQTT
// client. These packages depend only on the interfaces defined in core.
package infra
