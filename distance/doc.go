// Package distance provides the Euclidean metric used by the k-means engine.
//
// The kernels are backed by gonum's floats package. Comparing vectors of
// different dimensionality is a programming error and panics with an
// *ErrDimensionMismatch value.
//
// # Reduction
//
// A single distance may be summed sequentially (the default) or split across
// goroutines by dimension chunk:
//
//	fn := distance.Provider(distance.Parallel(256))
//	d := fn(a, b)
//
// For the small feature vectors typical of customer records (4–5 fields) the
// sequential reducer is always faster.
package distance
