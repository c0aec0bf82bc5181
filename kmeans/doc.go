// Package kmeans implements Lloyd's k-means clustering under the Euclidean
// metric.
//
// The building blocks are exported so they can be tested and composed on
// their own:
//
//   - Initializer: RandomPoint (optionally Distinct) and KMeansPlusPlus
//   - Assign: nearest-centroid assignment, parallel across points
//   - Update: centroid means, parallel across clusters
//   - HasConverged: per-identifier centroid movement against epsilon
//
// Engine ties them together:
//
//	Uninitialized -> Initialized -> Iterating -> Converged
//	                                          \-> MaxIterationsReached
//
// Reaching the iteration cap is not an error; callers inspect Result.State.
//
//	eng, err := kmeans.NewEngine(kmeans.Config{
//	    K:             3,
//	    Epsilon:       kmeans.DefaultEpsilon,
//	    MaxIterations: 300,
//	    Initializer:   kmeans.KMeansPlusPlus{},
//	    Rand:          rand.New(rand.NewPCG(42, 0)),
//	})
//	res, err := eng.Run(ctx, ds)
package kmeans
