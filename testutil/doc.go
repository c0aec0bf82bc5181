// Package testutil provides testing utilities for segmenter.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.Blobs(1000, 4, 3, 20, 1) // 3 Gaussian clusters, 20 apart
//	row := make([]float64, 4)
//	rng.FillUniform(row)                // uniform [0, 1)
package testutil
