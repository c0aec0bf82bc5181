// Package model defines the core types shared by the clustering engine and
// its collaborators.
//
// # Data Types
//
//   - Vector: one fixed-length numeric record (a customer feature vector)
//   - Dataset: ordered, fully materialised set of vectors of one dimension
//   - Centroid: a cluster identifier plus its current mean position
//   - Assignment: total mapping from point index to cluster identifier
//   - PendingAssignment: the optional assignment state held before the
//     first assignment step
//
// A Dataset is read-only once constructed:
//
//	ds, err := model.NewDataset([]model.Vector{
//	    {0, 0}, {0, 1}, {10, 10}, {10, 11},
//	})
package model
