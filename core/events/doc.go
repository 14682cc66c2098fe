// Package events defines the disbursement events emitted on the event bus.
//
// Available event types:
//   - RunEvent: batch started or finished
//   - ClusterEvent: one cluster solved, skipped, or failed
package events
