// Package cluster splits large disbursement problems into independently
// solvable groups using k-means over agent and objective coordinates.
package cluster
