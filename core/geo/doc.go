// Package geo provides great-circle distances, the cost matrix shared by the
// solvers and the aggregation precision probe used when coordinates are
// fetched from a search index.
package geo
